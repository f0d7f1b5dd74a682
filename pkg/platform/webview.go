package platform

// WebView is the host rendering control as seen by the pagecall surface.
// Implementations wrap a platform web view; none of these methods may block
// on page content.
type WebView interface {
	// Configure applies cfg. It is called once, before content loads.
	Configure(cfg Configuration)

	// AddUserScript registers a script the view injects into documents.
	AddUserScript(script UserScript)

	// AddScriptMessageHandler routes messages posted by web content on the
	// named channel to h. A later call with the same name replaces h.
	AddScriptMessageHandler(name string, h ScriptMessageHandler)

	// RemoveScriptMessageHandler stops routing messages for name. Unknown
	// names are ignored.
	RemoveScriptMessageHandler(name string)

	// EvaluateScript runs script in the content context. completion, when
	// non-nil, is called once on the UI thread with the script result or
	// the evaluation error.
	EvaluateScript(script string, completion func(result any, err error))
}

// ContentModeSupporter is implemented by views whose host can honour a
// preferred content mode.
type ContentModeSupporter interface {
	SupportsContentMode() bool
}

// ScriptMessage is a message posted by web content on a named channel.
type ScriptMessage struct {
	// Name is the channel the message was posted on.
	Name string
	// Body is the posted value. Hosts deliver strings, numbers, booleans,
	// maps and slices as decoded from the content's JSON-compatible value.
	Body any
	// MainFrame is true when the message came from the top-level frame.
	MainFrame bool
}

// ScriptMessageHandler receives messages posted by web content.
type ScriptMessageHandler interface {
	DidReceiveScriptMessage(msg ScriptMessage)
}

// ScriptMessageHandlerFunc adapts a function to ScriptMessageHandler.
type ScriptMessageHandlerFunc func(msg ScriptMessage)

// DidReceiveScriptMessage calls f(msg).
func (f ScriptMessageHandlerFunc) DidReceiveScriptMessage(msg ScriptMessage) {
	f(msg)
}

// InjectionTime is the point in the document lifecycle at which a user
// script runs.
type InjectionTime string

const (
	// InjectAtDocumentStart runs the script before any page script.
	InjectAtDocumentStart InjectionTime = "documentStart"
)

// UserScript is a script injected by the host into documents.
type UserScript struct {
	Source        string
	InjectionTime InjectionTime
	// MainFrameOnly restricts injection to the top-level frame.
	MainFrameOnly bool
}

// MediaType names a media kind ("audio", "video") for playback policy.
type MediaType string

// ContentMode is the preferred content mode for loaded pages.
type ContentMode string

const (
	ContentModeRecommended ContentMode = "recommended"
	ContentModeMobile      ContentMode = "mobile"
)

// Configuration is the set of engine settings applied to a web view.
type Configuration struct {
	// MediaTypesRequiringUserAction lists media that may not autoplay.
	// Empty means all media may autoplay.
	MediaTypesRequiringUserAction  []MediaType `json:"mediaTypesRequiringUserActionForPlayback"`
	AllowsInlineMediaPlayback      bool        `json:"allowsInlineMediaPlayback"`
	SuppressesIncrementalRendering bool        `json:"suppressesIncrementalRendering"`
	// ApplicationNameForUserAgent is appended to the engine's user agent.
	ApplicationNameForUserAgent         string      `json:"applicationNameForUserAgent"`
	AllowsAirPlayForMediaPlayback       bool        `json:"allowsAirPlayForMediaPlayback"`
	PreferredContentMode                ContentMode `json:"preferredContentMode"`
	AllowsBackForwardNavigationGestures bool        `json:"allowsBackForwardNavigationGestures"`
}

// ApplicationName is the identifier the pagecall surface adds to the user agent.
const ApplicationName = "PagecallIos"

// PagecallConfiguration returns the fixed policy for pagecall surfaces.
// The mobile content mode is requested only when supportsContentMode is
// true; otherwise the host's recommended mode is kept.
func PagecallConfiguration(supportsContentMode bool) Configuration {
	mode := ContentModeRecommended
	if supportsContentMode {
		mode = ContentModeMobile
	}
	return Configuration{
		MediaTypesRequiringUserAction:       []MediaType{},
		AllowsInlineMediaPlayback:           true,
		SuppressesIncrementalRendering:      false,
		ApplicationNameForUserAgent:         ApplicationName,
		AllowsAirPlayForMediaPlayback:       true,
		PreferredContentMode:                mode,
		AllowsBackForwardNavigationGestures: false,
	}
}
