package i18n

var ptBRCatalog = &Catalog{
	locale: "pt-BR",
	messages: map[Code]string{
		CodeConfigMissingAPIKey: "A chave de API do gerador está ausente; defina SANDTABLE_OPENAI_API_KEY",
		CodeConfigMissingTopic:  "Um tópico de cenário é obrigatório",
		CodeGeneratorAuth:       "O gerador rejeitou a chave de API configurada",
		CodeGeneratorRateLimit:  "O gerador está limitando requisições; tente novamente mais tarde",
		CodeGeneratorUnreach:    "Não foi possível alcançar o backend do gerador",
		CodeGeneratorBackend:    "O backend do gerador retornou um erro",
		CodeScenarioMalformed:   "Documento de cenário malformado: {{.Detail}}",
		CodeScenarioNoFrames:    "O cenário não possui quadros",
		CodeFrameOutOfRange:     "O quadro {{.Frame}} está fora do intervalo",
		CodeCellOutOfBounds:     "A célula ({{.X}}, {{.Y}}) está fora da grade de terreno",
		CodeUnitMissing:         "A unidade {{.UnitID}} não está presente neste quadro",
		CodeDoctrineBadSide:     "O lado de doutrina {{.Side}} não é Blue nem Red",
		CodeTerrainConflict:     "Uma dica de estilo de terreno e uma grade fixa não podem ser definidas juntas",
		CodeContinuationSpan:    "O ponto de continuação {{.Frame}} está além do último quadro",
		CodeNotFound:            "Cenário arquivado não encontrado",
	},
}
