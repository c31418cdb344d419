package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nikhilbhutani/legalrag/internal/llm"
)

type Route string

const (
	RouteGeneral   Route = "general"
	RouteCaseBased Route = "casebased"
)

const routePrompt = `Eres un enrutador de chatbot legal responsable de analizar las consultas de los usuarios y determinar si están relacionadas con temas legales o si son conversaciones generales.

## Instrucciones
- Enruta la consulta a "casebased" si contiene preguntas sobre leyes, consecuencias legales, procedimientos legales, derechos legales, documentos legales, casos judiciales, regulaciones o estatutos.
- Enruta a "general" si la consulta es un saludo, una charla trivial o claramente no relacionada con asuntos legales.
- En caso de duda, favorece "casebased".
- Responde únicamente con una palabra: general o casebased.

## Ejemplos
- "¿Cuáles son las consecuencias del robo?" -> casebased
- "Hola" -> general
- "¿Cómo estás hoy?" -> general
- "¿Puedes explicar qué es el habeas corpus?" -> casebased
- "¿Cuál es la diferencia entre un delito grave y uno menor?" -> casebased`

// Router classifies a question as general conversation or a legal query.
type Router struct {
	gateway llm.Gateway
	model   string
}

func NewRouter(gw llm.Gateway, model string) *Router {
	return &Router{gateway: gw, model: model}
}

func (r *Router) Route(ctx context.Context, question string) (Route, error) {
	resp, err := r.gateway.Chat(ctx, llm.ChatRequest{
		Model: r.model,
		Messages: []llm.Message{
			{Role: "system", Content: routePrompt},
			{Role: "user", Content: "Consulta del usuario: " + question},
		},
		MaxTokens: 10,
	})
	if err != nil {
		return "", fmt.Errorf("route query: %w", err)
	}

	route, ok := parseRoute(resp.Content)
	if !ok {
		slog.Warn("unparseable route, defaulting to casebased", "output", resp.Content)
	}
	return route, nil
}

// parseRoute falls back to RouteCaseBased when the output names neither route.
func parseRoute(output string) (Route, bool) {
	s := strings.ToLower(output)
	switch {
	case strings.Contains(s, string(RouteCaseBased)):
		return RouteCaseBased, true
	case strings.Contains(s, string(RouteGeneral)):
		return RouteGeneral, true
	default:
		return RouteCaseBased, false
	}
}
