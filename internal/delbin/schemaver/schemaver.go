// Package schemaver validates a schema's optional
// @require_engine = "<constraint>"; directive against the running
// engine version, the same constraint-matching approach the teacher
// repo's package manager uses for dependency resolution.
package schemaver

import (
	"fmt"

	semver "github.com/Masterminds/semver/v3"

	"github.com/delbin-lang/delbin/internal/delbin/diagnostic"
)

// Check reports a diagnostic.Error with code E05004 if engineVersion
// does not satisfy constraint.
func Check(engineVersion, constraint string) error {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return diagnostic.New(diagnostic.E05004EngineVersionMismatch,
			"invalid @require_engine constraint %q: %s", constraint, err)
	}

	v, err := semver.NewVersion(engineVersion)
	if err != nil {
		return fmt.Errorf("schemaver: invalid engine version %q: %w", engineVersion, err)
	}

	if !c.Check(v) {
		return diagnostic.New(diagnostic.E05004EngineVersionMismatch,
			"engine version %s does not satisfy @require_engine %q", engineVersion, constraint)
	}

	return nil
}
