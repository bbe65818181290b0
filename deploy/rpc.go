package deploy

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
)

type healthResponse struct {
	Status string `json:"status"`
}

// CheckRPCHealth calls the Soroban RPC getHealth method against the network
// endpoint before any deployment work starts.
func CheckRPCHealth(ctx context.Context, rpcURL string) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return fmt.Errorf("failed to connect to RPC %s: %v", rpcURL, err)
	}
	defer client.Close()

	var resp healthResponse
	if err := client.CallContext(ctx, &resp, "getHealth"); err != nil {
		return fmt.Errorf("RPC health check failed: %v", err)
	}
	if resp.Status != "healthy" {
		return fmt.Errorf("RPC reported status %q", resp.Status)
	}
	return nil
}
