// Package openapi lifts component and operation schemas out of OpenAPI 3
// documents so they can be resolved like standalone JSON Schemas. kin-openapi
// validates the document and indexes operations; the ordered raw payload is
// kept alongside so `_ux` annotations and property order survive.
package openapi
