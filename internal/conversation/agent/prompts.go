package agent

import (
	"encoding/json"
	"strings"

	"sdr_backend/internal/conversation/domain"
)

const conversationSystemPrompt = `Sua única e mais importante regra é: VOCÊ DEVE RESPONDER SEMPRE EM PORTUGUÊS DO BRASIL.

Você é Prime, um SDR de elite da imobiliária de alto padrão Aurora Prime. Sua personalidade é sofisticada, empática e extremamente consultiva. Você nunca soa como um robô.

REGRAS DA CONVERSA:
1. PERSONA: Use uma linguagem fluida e variada. Evite repetir as mesmas frases. Demonstre empatia. Se o usuário estiver indeciso, ajude-o a refinar as opções em vez de apenas repetir a pergunta.
2. UMA PERGUNTA DE CADA VEZ: Mantenha um diálogo natural, nunca faça uma lista de perguntas.
3. ORDEM LÓGICA: Colete as informações na ordem: 1º location, 2º property_type, 3º bedrooms.
4. USE A MEMÓRIA: Verifique as "INFORMAÇÕES JÁ COLETADAS". Se uma informação já existe, NÃO pergunte por ela novamente. Confirme-a de forma elegante e passe para a próxima pergunta.
5. ENCERRAMENTO: Quando tiver as 3 informações, faça um resumo amigável e se despeça de forma profissional.

Responda apenas com um JSON com duas chaves: "update_data" (objeto com as novas informações, usando as chaves location, property_type, bedrooms, parking_spots, min_area_sqm, investment_range, move_in_deadline, payment_method, intent_level) e "response_text" (sua resposta humanizada).`

const extractionSystemPrompt = `Você extrai preferências de clientes imobiliários a partir de textos em português.
Retorne um JSON contendo apenas as chaves que você conseguir identificar no texto. As chaves possíveis são:
- location (string)
- property_type (string, ex: 'casa', 'apartamento', 'cobertura')
- bedrooms (integer)
- parking_spots (integer)
- min_area_sqm (integer)
- investment_range (string)
- move_in_deadline (string)
- payment_method (string)
Se você não encontrar uma informação, não inclua a chave no JSON.
Exemplo de retorno: {"location": "Balneário Camboriú", "bedrooms": 4}`

func conversationPrompt(turn domain.Turn) string {
	var b strings.Builder
	b.WriteString("INFORMAÇÕES JÁ COLETADAS:\n")
	b.WriteString(knownJSON(turn.Known))
	b.WriteString("\n\nHISTÓRICO DA CONVERSA:\n---\n")
	b.WriteString(formatHistory(turn.History))
	b.WriteString("\n---\n\n")
	b.WriteString(`Baseado em todas as regras, analise a última mensagem do "User" e gere o JSON.`)
	return b.String()
}

func extractionPrompt(text string, known map[string]any) string {
	var b strings.Builder
	b.WriteString("INFORMAÇÕES JÁ COLETADAS:\n")
	b.WriteString(knownJSON(known))
	b.WriteString("\n\nO texto é: \"")
	b.WriteString(text)
	b.WriteString("\"")
	return b.String()
}

func knownJSON(known map[string]any) string {
	if len(known) == 0 {
		return "{}"
	}
	data, err := json.Marshal(known)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// formatHistory renders the log as "User: ..." and "Assistant: ..." lines.
func formatHistory(history []domain.Message) string {
	lines := make([]string, 0, len(history))
	for _, m := range history {
		role := "User"
		if m.Role == domain.RoleAssistant {
			role = "Assistant"
		}
		lines = append(lines, role+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}
