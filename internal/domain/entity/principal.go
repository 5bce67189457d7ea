package entity

// LoginIdentity é um principal de nível servidor (exclui roles).
type LoginIdentity struct {
	LoginName  string
	LoginType  string
	ServerName string
}

// LoginMapping é uma linha achatada do relatório multi-result de mapeamento
// login → usuário por banco. É renderizada como tabela lateral e nunca é
// mesclada na matriz.
type LoginMapping struct {
	LoginName string `json:"login_name"`
	Database  string `json:"database"`
	UserName  string `json:"user_name"`
	Alias     string `json:"alias"`
}

// ServerRoleMember é uma associação de role de servidor.
type ServerRoleMember struct {
	RoleName   string
	MemberName string
	MemberType string
	CreateDate string
	ModifyDate string
}

// ServerPermission é uma concessão explícita no escopo do servidor.
type ServerPermission struct {
	GranteeName     string
	GranteeType     string
	ObjectType      string
	ObjectName      string
	PermissionName  string
	PermissionState string
}

// DatabaseRoleMember é uma associação de role dentro de um banco.
type DatabaseRoleMember struct {
	Database  string
	UserName  string
	LoginName string
	RoleName  string
}

// DatabasePermission é uma concessão explícita no escopo de um banco.
type DatabasePermission struct {
	Database        string
	UserName        string
	LoginName       string
	ObjectType      string
	SchemaName      string
	ObjectName      string
	PermissionName  string
	PermissionState string
}
