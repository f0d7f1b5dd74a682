// Package pagecall embeds a web surface in a native view tree and bridges
// messages between its web content and Go.
//
// A [Surface] wraps a [platform.WebView]. Construction applies the fixed
// pagecall web view policy and injects the bundled PagecallNative.js
// bootstrap script, which gives every frame a window.PagecallNative client
// API. While attached, the surface owns a [Bridge] and receives messages on
// the "pagecall" channel:
//
//	view := platform.NewHeadlessWebView(true)
//	surface := pagecall.NewSurface(view, router)
//	surface.Attach()          // view entered the view tree
//	defer surface.Detach()    // view left the view tree
//
// Payloads reach the [Handler] unchanged. Handlers run off the UI thread and
// answer through the [Messenger] they are given; the bridge turns answers
// into scripts evaluated in the web content. Handler failures are delivered
// to the page as an "error" event and never escape the bridge.
package pagecall
