package constants

// SQL for the direct Postgres backend. Placeholders are written as ? and
// rebound per driver.
const (
	SetJWTClaims = `SELECT set_config('request.jwt.claims', ?, true)`

	GetProfileByID = `
	SELECT id, name, email FROM users WHERE id = ?
	`

	ListGroupsForUser = `
	SELECT p.id, p.name, p.admin_id, p.max_players
	FROM pelada_users pu
	JOIN peladas p ON p.id = pu.pelada_id
	WHERE pu.user_id = ? AND pu.ativo = ?
	ORDER BY pu.created_at ASC
	`

	ListEventsByGroup = `
	SELECT id, pelada_id, data_evento, prioridade_ate, status, created_at
	FROM eventos
	WHERE pelada_id = ?
	ORDER BY data_evento ASC
	`

	GetConfirmation = `
	SELECT id, evento_id, user_id, status, ordem_fila
	FROM confirmacoes
	WHERE evento_id = ? AND user_id = ?
	LIMIT 1
	`

	ListQueueByEvent = `
	SELECT c.id, c.evento_id, c.user_id, c.status, c.ordem_fila, u.name, u.email
	FROM confirmacoes c
	LEFT JOIN users u ON u.id = c.user_id
	WHERE c.evento_id = ?
	ORDER BY c.status ASC, c.ordem_fila ASC NULLS LAST
	`

	ListMembersByGroup = `
	SELECT pu.id, pu.pelada_id, pu.user_id, pu.tipo, pu.ativo, pu.created_at, u.name, u.email
	FROM pelada_users pu
	LEFT JOIN users u ON u.id = pu.user_id
	WHERE pu.pelada_id = ?
	ORDER BY pu.created_at ASC
	`

	InsertGroup = `
	INSERT INTO peladas (id, name, max_players, admin_id) VALUES (?, ?, ?, ?)
	`

	InsertMembership = `
	INSERT INTO pelada_users (id, pelada_id, user_id, tipo, ativo, created_at) VALUES (?, ?, ?, ?, ?, ?)
	`

	UpdateMembershipType = `
	UPDATE pelada_users SET tipo = ? WHERE id = ?
	`

	InsertEvent = `
	INSERT INTO eventos (id, pelada_id, data_evento, prioridade_ate, status, created_at) VALUES (?, ?, ?, ?, ?, ?)
	`

	UpdateEventStatus = `
	UPDATE eventos SET status = ? WHERE id = ?
	`

	UpdateConfirmationStatus = `
	UPDATE confirmacoes SET status = ? WHERE evento_id = ? AND user_id = ?
	`

	CallConfirmPresence = `SELECT confirm_presence(?)`

	CallAdminForceStatus = `SELECT admin_force_status(?, ?, ?)`
)
