package agent

import (
	"fmt"
)

const (
	// LabelNamespace prefixes the exact-match Gmail label. The full label for
	// a run is LabelNamespace + "/" + RunContext.Subsidiary().
	LabelNamespace = "NF-MEDICOS"

	// MaxAttachmentRecords is the harvest ceiling, counted over .xml
	// attachment records across all emails, not over messages.
	MaxAttachmentRecords = 900

	// AttachmentExtension is the only eligible attachment file type.
	AttachmentExtension = ".xml"

	// OutputFileName is the document the remote side persists the result to.
	OutputFileName = "emails_data.json"
)

// Label returns the exact Gmail label for a run context.
func Label(rc RunContext) string {
	return LabelNamespace + "/" + rc.Subsidiary()
}

// Instructions generates the operating instructions for one run. It is a
// pure function of the run context: the same discriminator always yields the
// same text, so one agent definition serves every subsidiary.
//
// The label exact-match, the .xml-only filter and the record ceiling are
// requested here in natural language; the engine is trusted to honor them
// and the workflow runner re-enforces the ceiling on the parsed result.
func Instructions(rc RunContext) string {
	label := Label(rc)
	return fmt.Sprintf(`Buscar todos os e-mails do Gmail cujo label é exatamente "%[1]s". Para cada e-mail, verifique se há anexos que sejam arquivos %[2]s. Apenas baixe e processe anexos com essa extensão. Inclua no resultado somente até o máximo de %[3]d registros de anexos %[2]s baixados (não exceda esse número).

Após processar, gere um arquivo chamado `+"`%[4]s`"+` contendo as informações extraídas dos e-mails e dos anexos.

# Passos recomendados

1. Conecte-se à conta do Gmail e busque e-mails cujo label é exatamente "%[1]s".
2. Para cada e-mail listado, verifique todos os anexos:
    - Baixe apenas aqueles com extensão `+"`%[2]s`"+`.
    - Colete informações do e-mail (e.g. remetente, assunto, data) e dos anexos relevantes.
3. Pare assim que atingir o limite de %[3]d arquivos anexos %[2]s baixados, mesmo que haja mais disponíveis.
4. Salve todos os dados em um arquivo chamado `+"`%[4]s`"+`.

# Output Format

- O resultado deve ser salvo em um arquivo `+"`%[4]s`"+` com um array de objetos, onde cada objeto representa um e-mail com os metadados relevantes e os detalhes dos anexos %[2]s baixados.
- Cada objeto deve conter: "email_id", "remetente", "assunto", "data" e "anexos_xml" (array de objetos com "nome_arquivo" e "conteudo_codificado", em base64 ou link/localização do arquivo salvo).
- O arquivo completo não deve exceder o total de %[3]d arquivos %[2]s.

# Notas

- Não processe anexos de outros formatos além de %[2]s.
- O critério do limite máximo refere-se ao número total de anexos %[2]s baixados e registrados no JSON, não ao número de e-mails.
- O label precisa ser igual ao valor de "%[1]s" (não inclua similares ou sublabels).
- Não escreva conclusões, apenas siga a lógica de busca, filtro, limite e gravação dos dados.
- Se menos de %[3]d anexos %[2]s forem encontrados, inclua todos.
- NÃO inclua outros textos no arquivo de saída além do próprio JSON.

IMPORTANTE: Acesse somente os e-mails que tenham exatamente o label informado; filtre apropriadamente; e respeite o limite de saída do total de %[3]d arquivos xml.`,
		label, AttachmentExtension, MaxAttachmentRecords, OutputFileName)
}
