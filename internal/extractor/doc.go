// Package extractor reads the client version and client group from a
// request.
//
// For each configured parameter name, in order, the extractor looks up
// a query or form parameter of that name, then a header of that name,
// then a header named "x-" + name. The first non-blank value wins.
//
//	ex := extractor.New(extractor.DefaultConfig())
//	rv := ex.Extract(extractor.NewHTTPAccessor(req))
//
// Group values are compared with the function returned by GroupEqual,
// which folds case unless the extractor is configured case-sensitive.
// Versions are never case-normalized.
package extractor
