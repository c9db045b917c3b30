package scene

import "github.com/boristopalov/batonpass/pkg/core"

// Button implements core.Button.
type Button struct {
	position core.Vec3
	on       bool
	presses  int
	resets   int
}

func (b *Button) Reset() {
	b.on = false
	b.resets++
}

func (b *Button) SetActivated() {
	if !b.on {
		b.presses++
	}
	b.on = true
}

func (b *Button) Pressed() bool       { return b.on }
func (b *Button) Position() core.Vec3 { return b.position }

// Activations counts off-to-on transitions.
func (b *Button) Activations() int { return b.presses }

func (b *Button) Resets() int { return b.resets }

// Food implements core.Food.
type Food struct {
	active bool
}

func (f *Food) SetActive(active bool) { f.active = active }
func (f *Food) Active() bool          { return f.active }
