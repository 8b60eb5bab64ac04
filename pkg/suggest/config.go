package suggest

import (
	"context"
	"fmt"

	"github.com/levenlabs/go-lflag"
)

// Configured sets up the suggestion Generator based on flags.
func Configured() Generator {
	provider := lflag.String("suggest-provider", "gemini", "Suggestion backend to use (available: gemini)")

	var p struct{ Generator }

	g := configuredGemini()

	lflag.Do(func() {
		switch *provider {
		case "gemini":
			if err := g.Validate(); err != nil {
				panic(fmt.Sprintf("gemini validation failed: %v", err))
			}
			if err := g.Init(context.Background()); err != nil {
				panic(fmt.Sprintf("gemini init failed: %v", err))
			}
			p.Generator = g
		default:
			panic(fmt.Sprintf("unknown suggestion provider: %s", *provider))
		}
	})

	return &p
}
