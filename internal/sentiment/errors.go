package sentiment

import "errors"

// ErrAnalyzerUnavailable is returned by every Score call once the lexicon
// failed to load. It is permanent until the process restarts.
var ErrAnalyzerUnavailable = errors.New("sentiment analyzer unavailable")
