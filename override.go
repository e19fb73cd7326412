package param

// Bindable bypasses reflection-based binding.
// When a type implements Bindable, Bind calls BindParams on a fresh zero
// value instead of scanning struct tags.
//
// This suits request types with cross-field rules that tags can't express,
// and generated binders that avoid reflection on hot paths.
type Bindable interface {
	// BindParams fills the receiver from p. Serializer names should be
	// resolved against r so callers' registries are honored.
	BindParams(p Params, r *Registry) error
}
