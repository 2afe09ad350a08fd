// Package contentitem serves and stores the binary data of content items.
//
// A content item is a record identified by a string id that may carry a MIME
// type hint. Its bytes live in a ContentStore; the item record itself lives in
// an item Registry. The Gateway answers the two data questions for an item:
//
//	data, err := gw.GetData(ctx, "doc-1")       // bytes + negotiated media type
//	rep, err := gw.SaveData(ctx, "doc-1", upload) // replace bytes from a single file part
//
// Failures are reported as *Error values carrying a Kind (not found, no
// content, invalid request, internal failure). The api subpackage maps kinds to
// HTTP status codes; the gateway itself knows nothing about HTTP.
//
// Typical wiring:
//
//	registry := memory.New()
//	blobs := memorystorage.New()
//	store := contentitem.NewBlobContentStore("memory", blobs, registry)
//	gw, err := contentitem.NewGateway(
//		contentitem.WithItemLookup(registry),
//		contentitem.WithContentStore(store),
//	)
package contentitem
