// Package main is a demo client for the card battle API. It exercises the
// HTTP surface end to end: create two players, grant starters, issue a
// challenge, accept it, and print the outcome.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	serverAddr string

	titleColor = color.New(color.FgCyan, color.Bold)
	okColor    = color.New(color.FgGreen)
	failColor  = color.New(color.FgRed)
)

var rootCmd = &cobra.Command{
	Use:   "cardbattle-client",
	Short: "Card Battle API demo client",
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a full challenge-and-battle flow against the server",
	RunE:  runDemo,
}

var cardsCmd = &cobra.Command{
	Use:   "cards [rarity]",
	Short: "List catalog cards, optionally filtered by rarity",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCards,
}

var playerCmd = &cobra.Command{
	Use:   "player <user-id>",
	Short: "Show a player profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlayer,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		failColor.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverAddr, "server", "http://localhost:8080", "API server address")
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(cardsCmd)
	rootCmd.AddCommand(playerCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	suffix := time.Now().Unix()
	alice := fmt.Sprintf("alice_%d", suffix)
	bob := fmt.Sprintf("bob_%d", suffix)

	titleColor.Println("== creating players ==")
	for _, id := range []string{alice, bob} {
		var resp map[string]any
		if err := call(http.MethodPost, "/v1/players",
			map[string]any{"user_id": id, "username": id}, &resp); err != nil {
			return err
		}
		okColor.Printf("  %s: %v tokens\n", id, resp["battle_tokens"])
	}

	titleColor.Println("== granting starter cards ==")
	for _, id := range []string{alice, bob} {
		var resp map[string]any
		if err := call(http.MethodPost, "/v1/players/"+id+"/starter", nil, &resp); err != nil {
			return err
		}
		cards := resp["cards"].([]any)
		okColor.Printf("  %s drew %d cards\n", id, len(cards))
	}

	titleColor.Println("== issuing challenge ==")
	var issued map[string]any
	if err := call(http.MethodPost, "/v1/challenges",
		map[string]any{"challenger_id": alice, "target_id": bob}, &issued); err != nil {
		return err
	}
	okColor.Printf("  challenge %v is %v\n", issued["id"], issued["status"])

	titleColor.Println("== accepting ==")
	var responded map[string]any
	if err := call(http.MethodPost, "/v1/challenges/"+bob+"/respond",
		map[string]any{"accept": true}, &responded); err != nil {
		return err
	}

	outcome, ok := responded["outcome"].(map[string]any)
	if !ok {
		return fmt.Errorf("no outcome in response: %v", responded)
	}
	okColor.Printf("  winner: %v (+%v tokens)\n", outcome["winner_id"], outcome["tokens_awarded"])
	if stolen, ok := outcome["stolen_card_id"].(string); ok && stolen != "" {
		okColor.Printf("  card stolen: %v\n", stolen)
	}

	titleColor.Println("== battle record ==")
	var record map[string]any
	if err := call(http.MethodGet, fmt.Sprintf("/v1/battles/%v", outcome["battle_id"]), nil, &record); err != nil {
		return err
	}
	okColor.Printf("  %v turns, status %v\n", record["turns"], record["status"])

	return nil
}

func runCards(cmd *cobra.Command, args []string) error {
	path := "/v1/cards"
	if len(args) == 1 {
		path += "?rarity=" + args[0]
	}

	var resp map[string]any
	if err := call(http.MethodGet, path, nil, &resp); err != nil {
		return err
	}

	cards := resp["cards"].([]any)
	titleColor.Printf("%d cards\n", len(cards))
	for _, raw := range cards {
		card := raw.(map[string]any)
		fmt.Printf("  %-20s %-10s atk %v def %v hp %v\n",
			card["id"], card["rarity"], card["attack"], card["defense"], card["health"])
	}
	return nil
}

func runPlayer(cmd *cobra.Command, args []string) error {
	var resp map[string]any
	if err := call(http.MethodGet, "/v1/players/"+args[0], nil, &resp); err != nil {
		return err
	}

	titleColor.Printf("%v\n", resp["username"])
	fmt.Printf("  tokens:     %v\n", resp["battle_tokens"])
	stats := resp["battle_stats"].(map[string]any)
	fmt.Printf("  level:      %v\n", stats["level"])
	fmt.Printf("  record:     %v-%v\n", stats["wins"], stats["losses"])
	fmt.Printf("  collection: %v\n", resp["collection"])
	return nil
}

// call sends a JSON request and decodes the JSON response, treating non-2xx
// statuses as errors
func call(method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, serverAddr+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, data)
	}
	if out != nil {
		return json.Unmarshal(data, out)
	}
	return nil
}
