// Package stac models the documents of the Open Science Catalog.
//
// The catalog is a tree of JSON files in a git repository:
//
//	catalog.json
//	products/catalog.json                  products index
//	products/<collection>/collection.json  dataset collection
//	variables/catalog.json                 variables index
//	variables/<variable>/catalog.json      variable catalog
//	projects/<project>/collection.json     project collection
//	workflow/<id>/record.json              workflow OGC record
//	experiments/<id>/record.json           experiment OGC record
//
// Freshly built documents use the typed [Collection], [Catalog] and [Record]
// structs. Documents that already exist in the repository are loaded as a
// [Document], which keeps every field it does not understand, in its
// original order, so rewriting one only touches what deep-code changed.
//
// # Links
//
// Every document sits two levels below the catalog root, so its root link is
// always "../../catalog.json" and its parent link "../catalog.json". Self
// links are absolute and derived from the catalog base URL, see [SelfHref].
package stac
