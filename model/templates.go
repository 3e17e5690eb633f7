package model

import "fmt"

// Template is the fixed configuration for one contract type: denormalized
// title, the ordered signer-role list and the clause text with {{FIELD}}
// placeholders. Templates are static configuration, not user-defined.
type Template struct {
	Title           string
	RequiredSigners []string
	Body            string
}

// CompanyData holds the operator company constants merged into every
// contract's field data before rendering.
var CompanyData = map[string]string{
	"NOME_EMPRESA":           "ASFALTO CATIVANTE - UNIPESSOAL LDA",
	"TIPO_SOCIEDADE":         "sociedade unipessoal por quotas",
	"NIPC_EMPRESA":           "517112604",
	"MORADA_EMPRESA":         "Praceta Alexandre Herculano, 5 3º ESQ, 2745-706 Queluz",
	"LICENCA_TVDE":           "225124/2025",
	"VALIDADE_LICENCA_TVDE":  "31/07/2035",
	"REPRESENTANTE_NOME":     "Paulo Rogério Costa Ferreira",
	"REPRESENTANTE_CARGO":    "único sócio-gerente",
	"NOME_OPERADORA":         "ASFALTO CATIVANTE - UNIPESSOAL LDA",
	"NIPC_OPERADORA":         "517112604",
	"NOME_OPERADOR":          "ASFALTO CATIVANTE - UNIPESSOAL LDA",
	"NIPC_OPERADOR":          "517112604",
	"N_LICENCA":              "225124/2025",
}

// Remuneration clause variants for the service-provision contract. The form
// flag MODALIDADE_PERCENTAGEM selects which one fills the clause slot.
const (
	ClausulaRemuneracaoFixa = `CLÁUSULA QUINTA (Remuneração)
A remuneração do Motorista terá como referência a facturação líquida obtida com os serviços prestados, deduzidas as taxas das plataformas, impostos aplicáveis e a taxa de utilização da viatura e gestão de frota fixada em {{VALOR_TAXA}} €/semana. Combustível, portagens e limpeza são encargos do Motorista.`

	ClausulaRemuneracaoPercentagem = `CLÁUSULA QUINTA (Remuneração)
A remuneração do Motorista terá como referência a facturação líquida depositada pelas plataformas eletrónicas na conta da Primeira Contraente. Sobre este valor incidirá uma taxa de serviço de 4% e IVA à taxa legal de 6%, totalizando 10% retidos pela Primeira Contraente. Combustível, portagens e limpeza são encargos do Motorista.`
)

// Rent clause variants for the vehicle rental contract. The form flag
// MODALIDADE_50_50 swaps the fixed weekly rent for revenue sharing.
const (
	ClausulaRendaFixa = `O Segundo Contraente obriga-se a pagar à Primeira Contraente uma renda semanal mínima de {{VALOR_RENDA}} €, liquidada antecipadamente, até à segunda-feira de cada semana. O atraso superior a 3 dias úteis no pagamento confere à Primeira Contraente o direito de suspender o contrato e recolher de imediato a viatura.`

	ClausulaRenda5050 = `A remuneração será partilhada em regime de 50/50% da faturação líquida semanal, após a dedução de todas as taxas das plataformas e impostos aplicáveis. As despesas de combustível, portagens e limpeza da viatura são da responsabilidade do Segundo Contraente. Os pagamentos serão efetuados semanalmente por transferência bancária.`
)

// Templates is the registry of the fixed contract templates, keyed by type.
var Templates = map[ContractType]*Template{
	TypePrestacao: {
		Title:           "Contrato de Prestação de Serviços TVDE",
		RequiredSigners: []string{"REPRESENTANTE_NOME", "NOME_MOTORISTA"},
		Body: `CONTRATO DE PRESTAÇÃO DE SERVIÇOS TVDE

Entre {{NOME_EMPRESA}}, {{TIPO_SOCIEDADE}}, NIPC {{NIPC_EMPRESA}}, com sede em {{MORADA_EMPRESA}}, representada por {{REPRESENTANTE_NOME}}, na qualidade de {{REPRESENTANTE_CARGO}}, adiante Primeira Contraente, e {{NOME_MOTORISTA}}, NIF {{NIF_MOTORISTA}}, residente em {{MORADA_MOTORISTA}}, adiante Motorista, é celebrado o presente contrato.

CLÁUSULA PRIMEIRA (Objeto)
O Motorista prestará serviços de condução em plataformas eletrónicas ao abrigo da licença TVDE {{LICENCA_TVDE}}, válida até {{VALIDADE_LICENCA_TVDE}}.

{{CLAUSULA_QUINTA_REMUNERACAO}}

Queluz, {{DATA_ASSINATURA}}.`,
	},
	TypeAluguer: {
		Title:           "Contrato de Aluguer de Viatura para Fins TVDE",
		RequiredSigners: []string{"REPRESENTANTE_NOME", "NOME_MOTORISTA"},
		Body: `CONTRATO DE ALUGUER DE VIATURA PARA FINS TVDE

Entre {{NOME_EMPRESA}}, NIPC {{NIPC_EMPRESA}}, representada por {{REPRESENTANTE_NOME}}, adiante Primeira Contraente, e {{NOME_MOTORISTA}}, NIF {{NIF_MOTORISTA}}, adiante Segundo Contraente, é celebrado o presente contrato de aluguer da viatura {{MARCA_VEICULO}} {{MODELO_VEICULO}}, matrícula {{MATRICULA}}.

CLÁUSULA TERCEIRA (Renda)
` + ClausulaRendaFixa + `

Queluz, {{DATA_ASSINATURA}}.`,
	},
	TypeUber: {
		Title:           "Declaração de Autorização para Inscrição Uber",
		RequiredSigners: []string{"NOME_PROPRIETARIO", "REPRESENTANTE_NOME", "NOME_MOTORISTA"},
		Body: `DECLARAÇÃO DE AUTORIZAÇÃO PARA INSCRIÇÃO UBER

{{NOME_PROPRIETARIO}}, NIF {{NIF_PROPRIETARIO}}, na qualidade de proprietário da viatura {{MARCA_VEICULO}} {{MODELO_VEICULO}}, matrícula {{MATRICULA}}, autoriza a operadora {{NOME_OPERADORA}}, NIPC {{NIPC_OPERADORA}}, titular da licença {{N_LICENCA}}, e o motorista {{NOME_MOTORISTA}}, NIF {{NIF_MOTORISTA}}, a inscrever e operar a referida viatura na plataforma Uber.

Queluz, {{DATA_ASSINATURA}}.`,
	},
	TypeComodato: {
		Title:           "Contrato de Comodato para Plataforma Bolt",
		RequiredSigners: []string{"NOME_PROPRIETARIO", "REPRESENTANTE_NOME"},
		Body: `CONTRATO DE COMODATO PARA PLATAFORMA BOLT

Entre {{NOME_PROPRIETARIO}}, NIF {{NIF_PROPRIETARIO}}, adiante Comodante, e {{NOME_OPERADOR}}, NIPC {{NIPC_OPERADOR}}, representado por {{REPRESENTANTE_NOME}}, adiante Comodatário, é celebrado o presente contrato de comodato da viatura {{MARCA_VEICULO}} {{MODELO_VEICULO}}, matrícula {{MATRICULA}}, para operação na plataforma Bolt ao abrigo da licença {{N_LICENCA}}.

Queluz, {{DATA_ASSINATURA}}.`,
	},
	TypeAluguerProprietario: {
		Title:           "Contrato de Aluguer de Viatura de Proprietário",
		RequiredSigners: []string{"REPRESENTANTE_NOME", "NOME_ASSINANTE_PROPRIETARIO"},
		Body: `CONTRATO DE ALUGUER DE VIATURA DE PROPRIETÁRIO

Entre {{NOME_ASSINANTE_PROPRIETARIO}}, NIF {{NIF_PROPRIETARIO}}, proprietário da viatura {{MARCA_VEICULO}} {{MODELO_VEICULO}}, matrícula {{MATRICULA}}, e {{NOME_EMPRESA}}, NIPC {{NIPC_EMPRESA}}, representada por {{REPRESENTANTE_NOME}}, é celebrado o presente contrato de aluguer pelo valor semanal de {{VALOR_RENDA}} €.

Queluz, {{DATA_ASSINATURA}}.`,
	},
	TypeAluguerParceiro: {
		Title:           "Contrato de Aluguer de Viatura (Parceiro)",
		RequiredSigners: []string{"REPRESENTANTE_NOME", "GERENTE_PROPRIETARIO_C"},
		Body: `CONTRATO DE ALUGUER DE VIATURA (PARCEIRO)

Entre {{NOME_EMPRESA_C}}, NIPC {{NIPC_EMPRESA_C}}, representada pelo gerente {{GERENTE_PROPRIETARIO_C}}, e {{NOME_EMPRESA}}, NIPC {{NIPC_EMPRESA}}, representada por {{REPRESENTANTE_NOME}}, é celebrado o presente contrato de aluguer da viatura {{MARCA_VEICULO}} {{MODELO_VEICULO}}, matrícula {{MATRICULA}}, pelo valor semanal de {{VALOR_RENDA}} €.

Queluz, {{DATA_ASSINATURA}}.`,
	},
}

// RoleLabels maps signer roles to the labels shown on signing surfaces.
var RoleLabels = map[string]string{
	"REPRESENTANTE_NOME":          "Representante",
	"NOME_MOTORISTA":              "Motorista",
	"NOME_PROPRIETARIO":           "Proprietário",
	"NOME_ASSINANTE_PROPRIETARIO": "Proprietário",
	"GERENTE_PROPRIETARIO_C":      "Gerente",
}

// RoleLabel returns the display label for a signer role, falling back to
// the role name itself.
func RoleLabel(role string) string {
	if label, ok := RoleLabels[role]; ok {
		return label
	}
	return role
}

// TemplateFor returns the fixed template for a contract type
func TemplateFor(ct ContractType) (*Template, error) {
	tpl, ok := Templates[ct]
	if !ok {
		return nil, fmt.Errorf("unknown contract type: %s", ct)
	}
	return tpl, nil
}
