package collab

// ConfirmerFunc adapts a plain function to the controller's Confirmer.
type ConfirmerFunc func(prompt string) bool

// Confirm invokes the wrapped function.
func (f ConfirmerFunc) Confirm(prompt string) bool {
	return f(prompt)
}

// PreConfirmed answers every prompt affirmatively. The HTTP surface uses it
// because the demo page collects the confirmation client-side before calling
// the API.
func PreConfirmed() ConfirmerFunc {
	return func(string) bool { return true }
}
