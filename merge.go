package delbin

// Merge generates a header from src and env against a single "image"
// section bound to imageData, then appends imageData after the
// generated header — the common case of prefixing a firmware/package
// image with its own descriptor block.
func Merge(src string, env Environment, imageData []byte) (Result, error) {
	sections := Sections{"image": imageData}

	res, err := Generate(src, env, sections)
	if err != nil {
		return Result{}, err
	}

	merged := make([]byte, 0, len(res.Data)+len(imageData))
	merged = append(merged, res.Data...)
	merged = append(merged, imageData...)

	return Result{Data: merged, Warnings: res.Warnings}, nil
}
