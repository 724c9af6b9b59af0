// Package umlsdex is an embedded Go client for UMLS concept data stored in
// Valkey or Redis.
//
// It loads a UMLS META directory into denormalized concept documents and a
// string index, then answers lookups over them without going through the HTTP
// API.
//
//	client, _ := umlsdex.New(ctx, umlsdex.WithValkey("localhost:6379", ""))
//	defer client.Close()
//
//	summary, _ := client.Load(ctx, "/data/2024AB/META", umlsdex.LoadOptions{
//	    Languages: []string{"ENG"},
//	})
//
//	c, _ := client.Concepts().Get(ctx, "C0000005")
//	hits, _ := client.Strings().Search(ctx, "tumor", umlsdex.ModeSubstring, 20)
//
// A client built WithMemory keeps everything in process, which is handy in
// tests and for small extracts.
package umlsdex
