package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/mangiafuoco/pkg/chat"
	"github.com/go-go-golems/mangiafuoco/pkg/events"
	"github.com/go-go-golems/mangiafuoco/pkg/model/modeltest"
	"github.com/go-go-golems/mangiafuoco/pkg/tools"
	"github.com/go-go-golems/mangiafuoco/pkg/turnloop"
)

type calculatorInput struct {
	Expression string `json:"expression" jsonschema:"description=Arithmetic expression to evaluate"`
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.InfoLevel)

	ctx := context.Background()

	calculator, err := tools.NewToolFromFunc("calculator", "Evaluates arithmetic expressions",
		func(input calculatorInput) (string, error) {
			if input.Expression == "2+2" {
				return "4", nil
			}
			return "", fmt.Errorf("unsupported expression: %s", input.Expression)
		})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build calculator tool")
	}

	registry := tools.NewInMemoryRegistry()
	if err := registry.Register(calculator); err != nil {
		log.Fatal().Err(err).Msg("failed to register tool")
	}

	// A scripted model keeps the example self-contained: first turn requests
	// the calculator, second turn answers with its result.
	scripted := modeltest.NewScriptedModel(
		modeltest.ToolUseTurn("toolu_01", "calculator", `{"expression":"2+2"}`),
		modeltest.TextTurn("The answer is 4.", chat.StopReasonEndTurn),
	)

	loop, err := turnloop.New(
		turnloop.WithModel(scripted),
		turnloop.WithRegistry(registry),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build turn loop")
	}

	history := chat.Conversation{
		chat.NewUserTextMessage("What is 2+2?"),
	}
	tc := turnloop.NewTurnContext(&history).
		WithSystemPrompt("You are a helpful math assistant.")

	execution := loop.RunStream(ctx, tc)
	for ev := range execution.Events {
		switch e := ev.(type) {
		case *events.EventToolCallExecute:
			fmt.Printf("-> tool %s(%s)\n", e.Name, e.Input)
		case *events.EventToolCallResult:
			fmt.Printf("<- tool %s = %s\n", e.Name, e.Result)
		case *events.EventFinal:
			fmt.Printf("final (%s): %s\n", e.StopReason, e.Text)
		}
	}

	result, err := execution.Wait()
	if err != nil {
		log.Fatal().Err(err).Msg("turn failed")
	}

	fmt.Println()
	fmt.Printf("stop reason: %s\n", result.StopReason)
	fmt.Printf("cycles: %d\n", result.Metrics.CycleCount)

	dump, err := chat.DumpYAML(history)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to dump conversation")
	}
	fmt.Println("\nconversation:")
	fmt.Println(dump)
}
