package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultArtifactsDir is where optimized wasm builds are written relative to
// a contract package.
const DefaultArtifactsDir = "../../artifacts/"

// GetWasmPath returns the path of the wasm artifact of contractName inside
// artifactsDir. Dashes in the name become underscores. When no plain
// artifact exists, the architecture suffixed build (e.g. mock_vault-aarch64.wasm)
// is returned instead.
func GetWasmPath(artifactsDir, contractName string) string {
	name := strings.ReplaceAll(contractName, "-", "_")
	path := filepath.Join(artifactsDir, name+".wasm")
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return filepath.Join(artifactsDir, name+"-"+archSuffix(runtime.GOARCH)+".wasm")
}

func archSuffix(goarch string) string {
	switch goarch {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	}
	return goarch
}
