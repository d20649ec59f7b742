package model

// Principal : проверенная личность текущего пользователя, приходит от внешнего слоя аутентификации
type Principal struct {
	UserID string   `json:"userId"`
	Email  string   `json:"email"`
	OrgIDs []string `json:"orgIds"`
}

// MemberOf : внешняя проверка членства. Ядро orgId не проверяет
func (p *Principal) MemberOf(orgID string) bool {
	for _, id := range p.OrgIDs {
		if id == orgID {
			return true
		}
	}
	return false
}
