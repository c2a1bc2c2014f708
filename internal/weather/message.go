package weather

import "errors"

// UserMessage turns a pipeline error into the text shown to the user. It
// switches on the failure kind and the wrapped sentinels, never on message
// text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	f, ok := AsFailure(err)
	if !ok {
		return "Unexpected error: " + err.Error()
	}

	switch f.Kind {
	case FailureEmptyInput:
		return "Please enter a city name!"
	case FailureLocation:
		if f.NotFound() {
			return "City not found!"
		}
		return "Location error: " + detail(f.Err)
	case FailureTimezone:
		if f.NotFound() {
			return "No timezone found for this location."
		}
		return "Timezone error: " + detail(f.Err)
	case FailureWeather:
		if errors.Is(f.Err, ErrConnection) {
			return "Connection error: Check your network."
		}
		return "API Error: " + detail(f.Err)
	case FailureCanceled:
		return "Search cancelled."
	default:
		return "Unexpected error: " + detail(f.Err)
	}
}

// detail prefers the provider's own message over the wrapped error chain.
func detail(err error) string {
	if err == nil {
		return "unknown error"
	}
	var pe *ProviderError
	if errors.As(err, &pe) && pe.Message != "" {
		return pe.Message
	}
	var re *ResolverError
	if errors.As(err, &re) && re.Err != nil {
		return re.Err.Error()
	}
	return err.Error()
}
