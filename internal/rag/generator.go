package rag

import (
	"context"
	"fmt"

	"github.com/nikhilbhutani/legalrag/internal/llm"
)

const caseBasedPrompt = `Esta es la pregunta: %s y este es el contexto: %s.

Proporciona una respuesta legal completa basada en el contexto proporcionado. Actúa como un asistente legal profesional para abogados. Tu respuesta debe:

1. Incluir una respuesta clara y específica a la pregunta basada únicamente en el contexto dado
2. Formatear los puntos clave con espaciado y estructura adecuados
3. Usar **negrita** para principios legales importantes, referencias a casos o advertencias críticas
4. Usar saltos de párrafo entre secciones distintas
5. Incluir viñetas donde sea apropiado para listar requisitos, factores o consideraciones
6. Si se citan regulaciones o estatutos específicos, formatearlos correctamente
7. Evitar jerga innecesaria y mantener la respuesta directa

Tu respuesta debe ser completa pero concisa, enfocándose en la información legalmente relevante.`

const generalPrompt = `Esta es la pregunta: %s. Actúa como si fueras un chatbot legal para asistir, así que responde en consecuencia.

Tu respuesta debe ser completa pero concisa.`

type Generator struct {
	gateway llm.Gateway
	model   string
}

func NewGenerator(gw llm.Gateway, model string) *Generator {
	return &Generator{gateway: gw, model: model}
}

// CaseBased answers from the assembled search context only.
func (g *Generator) CaseBased(ctx context.Context, question, contextText string) (string, error) {
	return g.complete(ctx, fmt.Sprintf(caseBasedPrompt, question, contextText))
}

func (g *Generator) General(ctx context.Context, question string) (string, error) {
	return g.complete(ctx, fmt.Sprintf(generalPrompt, question))
}

func (g *Generator) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.gateway.Chat(ctx, llm.ChatRequest{
		Model:    g.model,
		Messages: []llm.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return resp.Content, nil
}
