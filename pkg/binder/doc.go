// Package binder binds HTTP request data to Go structs.
//
// Three binders are provided:
//
//   - JSON(opts...): decodes a JSON body in strict mode with a size limit
//   - Query(): fills fields tagged `query:"name"` from the URL query
//   - Path(extractor): fills fields tagged `path:"name"` using a router
//     specific extractor such as chi.URLParam
//
// Query and path binders only touch fields carrying their tag. They support
// string and signed integer fields and take the first value of a repeated
// key. An empty tag name binds to the lowercased field name; `-` skips a
// field.
//
// A JSON binder applied to a request without a body reports
// ErrBinderNotApplicable, leaving the target at its zero value.
package binder
