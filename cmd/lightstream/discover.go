package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/coreman2200/funtimes-lightstream/internal/discovery"
)

var (
	discoverTimeout int
	discoverJSON    bool
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find lightstream controllers on the network",
	Long:  `Browse mDNS/DNS-SD for ` + discovery.ServiceType + ` services and print what answers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := discovery.NewScanner()
		s.Timeout = time.Duration(discoverTimeout) * time.Second
		peers, err := s.Scan(cmd.Context())
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		if discoverJSON {
			return json.NewEncoder(os.Stdout).Encode(peers)
		}
		if len(peers) == 0 {
			fmt.Println("No controllers found.")
			return nil
		}
		for _, p := range peers {
			fmt.Printf("%s\t%s:%d\t%s\t%d px\n", p.Instance, p.IP, p.Port, p.Device, p.Pixels)
		}
		return nil
	},
}

func init() {
	discoverCmd.Flags().IntVar(&discoverTimeout, "timeout", 5, "scan timeout in seconds")
	discoverCmd.Flags().BoolVar(&discoverJSON, "json", false, "print as JSON")
}
