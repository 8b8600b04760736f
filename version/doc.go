// Package version reports build metadata for the servicecore binary.
//
// Values are injected at link time and fall back to the VCS stamps Go
// embeds in the binary:
//
//	go build -ldflags "-X github.com/kbukum/servicecore/version.Version=v1.2.0"
package version
