//go:build e2e

package helpers

import (
	"log"
	"os"
	"os/exec"
	"path/filepath"
)

// BuildServer compiles the server binary into a temporary directory and
// returns a callback that removes it.
func BuildServer() (string, func(), error) {
	buildDir, err := os.MkdirTemp(os.TempDir(), "memgraph-query-mcp-e2e-*")
	if err != nil {
		return "", nil, err
	}

	cleanup := func() {
		if err := os.RemoveAll(buildDir); err != nil {
			log.Printf("failed to cleanup build directory: %v", err)
		}
	}

	binaryName := "memgraph-query-mcp"
	binaryPath := filepath.Join(buildDir, binaryName)

	// Get the project root directory (go up from test/e2e/)
	projectRoot := filepath.Join("..", "..")

	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	cmd.Dir = filepath.Join(projectRoot, "cmd", "memgraph-query-mcp")
	cmd.Env = os.Environ()

	output, err := cmd.CombinedOutput()
	if err != nil {
		cleanup()
		return "", nil, err
	}

	log.Printf("Built server binary at: %s", binaryPath)
	if len(output) > 0 {
		log.Printf("Build output: %s", string(output))
	}

	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		cleanup()
		return "", nil, err
	}

	return binaryPath, cleanup, nil
}
