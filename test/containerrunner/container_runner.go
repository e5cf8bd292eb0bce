//go:build integration || e2e

package containerrunner

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/memgraph-query/mcp/internal/config"
	"github.com/memgraph-query/mcp/internal/database"
	"github.com/memgraph-query/mcp/internal/logger"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const boltPort = "7687/tcp"

var (
	container testcontainers.Container
	params    database.ConnectionParams
	once      sync.Once
)

// Start launches the shared Memgraph container. With USE_CONTAINER=false an
// already running instance at MEMGRAPH_URI is used instead.
func Start(ctx context.Context) {
	once.Do(func() {
		startOnce(ctx)
	})
}

// Params returns the connection parameters of the running instance.
func Params() database.ConnectionParams {
	if params.URI == "" {
		log.Fatal("container runner is not started")
	}
	return params
}

// Close terminates the container, if one was started.
func Close(ctx context.Context) {
	if container == nil {
		return
	}
	if err := container.Terminate(ctx); err != nil {
		log.Printf("Warning: failed to terminate container: %v", err)
	}
}

func startOnce(ctx context.Context) {
	params = database.ConnectionParams{
		URI:      config.GetEnvWithDefault("MEMGRAPH_URI", "bolt://localhost:7687"),
		Username: config.GetEnv("MEMGRAPH_USERNAME"),
		Password: config.GetEnv("MEMGRAPH_PASSWORD"),
	}

	useContainer := config.ParseBool(config.GetEnv("USE_CONTAINER"), true)
	log.Printf("Testing using container: %t", useContainer)

	if useContainer {
		ctr, boltURI, err := createMemgraphContainer(ctx)
		if err != nil {
			log.Fatalf("failed to start shared memgraph container: %v", err)
		}
		container = ctr
		params.URI = boltURI
	}

	if err := waitForConnectivity(ctx); err != nil {
		Close(ctx)
		log.Fatalf("failed to verify connectivity: %v", err)
	}
}

func createMemgraphContainer(ctx context.Context) (testcontainers.Container, string, error) {
	req := testcontainers.ContainerRequest{
		Image:        config.GetEnvWithDefault("MEMGRAPH_IMAGE", "memgraph/memgraph:2.21.0"),
		ExposedPorts: []string{boltPort},
		Cmd:          []string{"--telemetry-enabled=false"},
		WaitingFor:   wait.ForListeningPort(boltPort).WithStartupTimeout(120 * time.Second),
	}

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, "", err
	}

	host, err := ctr.Host(ctx)
	if err != nil {
		_ = ctr.Terminate(ctx)
		return nil, "", err
	}

	port, err := ctr.MappedPort(ctx, boltPort)
	if err != nil {
		_ = ctr.Terminate(ctx)
		return nil, "", err
	}

	return ctr, fmt.Sprintf("bolt://%s:%s", host, port.Port()), nil
}

// waitForConnectivity runs a trivial query with exponential backoff until
// the instance answers.
func waitForConnectivity(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	service := database.NewNeo4jService("integration", logger.New("error", "text", io.Discard))

	backoff := 100 * time.Millisecond
	maxBackoff := 2 * time.Second

	var lastErr error
	for {
		_, err := service.ExecuteQuery(ctx, params, "RETURN 1")
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}

		time.Sleep(backoff)
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}

	if container != nil {
		if rc, err := container.Logs(context.Background()); err == nil && rc != nil {
			b, rerr := io.ReadAll(rc)
			_ = rc.Close()
			if rerr == nil && len(b) > 0 {
				return fmt.Errorf("memgraph connectivity not ready: %v\ncontainer logs:\n%s", lastErr, b)
			}
		}
	}
	return fmt.Errorf("memgraph connectivity not ready: %v", lastErr)
}
