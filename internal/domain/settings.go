package domain

// Ключи параметров конфигурации.
const (
	ParamAllowNotSignedContract = "contract.allow_not_signed_contract"
)

// Имя шаблона письма об истечении срока договора.
const TemplateContractExpiration = "contract_expiration_notice"

type Setting struct {
	Key   string `json:"key" db:"key"`
	Value string `json:"value" db:"value"`
}

// MailTemplate — шаблон уведомления, хранится в базе.
type MailTemplate struct {
	ID      int64  `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	Subject string `json:"subject" db:"subject"`
	Body    string `json:"body" db:"body"`
}
