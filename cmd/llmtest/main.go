// Command llmtest sends a short sample conversation through the
// configured LLM providers so credentials can be checked without
// running the full server.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/joho/godotenv"

	"github.com/mlediamant/salon-crm/cmd/mainconfig"
	"github.com/mlediamant/salon-crm/internal/bot"
	appconfig "github.com/mlediamant/salon-crm/internal/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := appconfig.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	req := bot.LLMRequest{
		System: []string{
			"You are the sales assistant of a beauty salon. Keep replies brief and friendly.",
		},
		Messages: []bot.ChatMessage{
			{Role: bot.ChatRoleUser, Content: "Hi! Do you do gel manicures?"},
			{Role: bot.ChatRoleAssistant, Content: "Yes, we do! A gel manicure takes about an hour. Would you like to book a slot?"},
			{Role: bot.ChatRoleUser, Content: "What times are free this week?"},
		},
		MaxTokens:   200,
		Temperature: 0.7,
	}

	rule := strings.Repeat("=", 60)
	fmt.Println(rule)
	fmt.Println("LLM Provider Test")
	fmt.Println(rule)

	if cfg.GeminiAPIKey != "" {
		fmt.Println("\n[1] Testing Gemini...")
		gemini, err := bot.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			fmt.Printf("    failed to create Gemini client: %v\n", err)
		} else {
			defer gemini.Close()
			runProbe(ctx, "Gemini", gemini, req)
		}
	} else {
		fmt.Println("\n[1] Skipping Gemini test (GEMINI_API_KEY not set)")
	}

	if cfg.BedrockModelID != "" {
		fmt.Println("\n[2] Testing Bedrock...")
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			fmt.Printf("    failed to load AWS config: %v\n", err)
			os.Exit(1)
		}
		bedrock := bot.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg))
		bedrockReq := req
		bedrockReq.Model = cfg.BedrockModelID
		runProbe(ctx, "Bedrock", bedrock, bedrockReq)
	} else {
		fmt.Println("\n[2] Skipping Bedrock test (BEDROCK_MODEL_ID not set)")
	}
}

func runProbe(ctx context.Context, name string, llm bot.LLMClient, req bot.LLMRequest) {
	start := time.Now()
	resp, err := llm.Complete(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		fmt.Printf("    %s error: %v\n", name, err)
		return
	}
	fmt.Printf("    %s response (%v):\n", name, elapsed.Round(time.Millisecond))
	fmt.Printf("    %s\n", resp.Text)
	fmt.Printf("    Tokens: in=%d, out=%d\n", resp.Usage.InputTokens, resp.Usage.OutputTokens)
}
