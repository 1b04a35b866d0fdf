package bus

// The router always renders stereo. Its input is either a stereo pair or a
// single channel it duplicates.

// NewMonoToStereo is one mono input feeding a stereo output.
func NewMonoToStereo() *Configuration {
	return NewBuilder("Mono In / Stereo Out").
		WithMonoInput("Mono In").
		WithStereoOutput("Stereo Out").
		MustBuild()
}

// NewEffectStereo is a stereo input feeding a stereo output.
func NewEffectStereo() *Configuration {
	return NewBuilder("Stereo In / Stereo Out").
		WithStereoInput("Stereo In").
		WithStereoOutput("Stereo Out").
		MustBuild()
}

// Layouts lists the supported layouts, preferred first.
func Layouts() []*Configuration {
	return []*Configuration{NewEffectStereo(), NewMonoToStereo()}
}

// Match returns the supported layout for the given main bus widths, or nil.
func Match(inputs, outputs int) *Configuration {
	for _, c := range Layouts() {
		if c.Accepts(inputs, outputs) {
			return c
		}
	}
	return nil
}
