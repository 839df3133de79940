// Package livesync streams the operation log of a memdom document to
// websocket clients and applies remote state changes on the runtime loop.
//
// A Hub observes the runtime it serves: after every scheduler flush the
// document's pending operations are published as one numbered batch.
// Clients connect to /ws and receive, in order:
//
//	{"type":"snapshot","seq":4,"html":"<div>…</div>","tree":{…}}
//	{"type":"ops","seq":5,"ops":[{"op":"SetText","node":7,"value":"6"}]}
//
// The snapshot tree carries node ids so a client can mirror the document
// and apply later batches. Clients send JSON messages of their own:
//
//	{"type":"set","key":"count","value":6}           root instance state
//	{"type":"dispatch","node":7,"event":"click"}     fire a node listener
//	{"type":"resync","seq":4}                        replay batches after 4
//	{"type":"ping"}
//
// A resync that reaches beyond the kept history is answered with a fresh
// snapshot.
//
// Wiring:
//
//	doc := memdom.NewDocument()
//	hub := livesync.NewHub(doc, livesync.Config{})
//	rt := reactive.NewRuntime(reactive.Config{Async: true, Observer: hub})
//	app := component.NewApp(component.Options{Backend: doc, Runtime: rt})
//	go rt.Loop().Run(ctx)
//	rt.Loop().Do(ctx, func() { hub.Attach(app.Mount(def, nil, nil)) })
//	http.ListenAndServe(":8080", hub.Router())
package livesync
