// Package registry holds the versioned mapping declarations of the
// router.
//
// Declarations are registered once at startup. Each declaration is
// validated (handler ID, paths, strict version syntax) and checked for
// conflicts by fingerprint: the normalized route key plus the sorted set
// of declared version values. A duplicate fingerprint is an
// *AmbiguousMappingError, except for two cases:
//
//   - the same handler registering again is a no-op;
//   - two plain (version-less) mappings from different sources are
//     arbitrated by priority, lower wins, and a losing registration is
//     recorded as a RegistrationConflictWarning.
//
// Outcomes do not depend on registration order.
//
// After Freeze the registry is immutable and safe for concurrent reads
// without locking:
//
//	reg, err := registry.Build(decls, registry.WithLogger(logger))
//	if err != nil {
//	    logger.Fatal("invalid route table", observability.Error(err))
//	}
//	entries, ok := reg.Lookup(key)
package registry
