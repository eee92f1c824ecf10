// Package provider defines the minimal contract shared by swappable
// backends and a registry that builds them by kind from typed config.
//
// # Usage
//
//	reg := provider.NewRegistry[backend.Transport, backend.Config]()
//	reg.RegisterFactory("whisper", whisper.Factory)
//	t, err := reg.Create(cfg.Kind, cfg)
package provider
