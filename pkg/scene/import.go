package scene

// Import is a scene built from a file or generator: one assembly holding
// every texture, texture instance and material that was found
type Import struct {
	Scene    *Scene
	Assembly *Assembly

	// Suggested output resolution; zero when the source does not specify one
	Width  int
	Height int
}

func newImport(name string, scene *Scene) (*Import, error) {
	assembly := NewAssembly(name)
	if err := scene.AddAssembly(assembly); err != nil {
		return nil, err
	}
	return &Import{Scene: scene, Assembly: assembly}, nil
}
