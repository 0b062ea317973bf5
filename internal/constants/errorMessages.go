package constants

// User-facing notices shown after auth and dashboard actions.
const (
	MsgMagicLinkSent      = "Link de acesso enviado para seu email."
	MsgAccountCreated     = "Conta criada. Verifique seu email se a confirmacao estiver ativa."
	MsgResetEmailSent     = "Enviamos um email para redefinir sua senha."
	MsgPasswordUpdated    = "Senha atualizada com sucesso."
	MsgPasswordsMismatch  = "As senhas nao conferem."
	MsgGroupCreated       = "Pelada criada."
	MsgGroupJoined        = "Entrou com sucesso."
	MsgAlreadyMember      = "Voce ja participa dessa pelada."
	MsgGroupNotFound      = "Pelada nao encontrada."
	MsgEventCreated       = "Evento criado."
	MsgEventStatusUpdated = "Status do evento atualizado."
	MsgPresenceConfirmed  = "Presenca registrada."
	MsgMarkedOut          = "Voce esta fora deste evento."
	MsgMembershipUpdated  = "Tipo do membro atualizado."
	MsgStatusForced       = "Status atualizado pelo admin."
	MsgSignedOut          = "Sessao encerrada."
)

// Validation messages.
const (
	MsgInvalidEmail       = "Informe um email valido."
	MsgPasswordRequired   = "Informe a senha."
	MsgNameRequired       = "Informe seu nome."
	MsgResendCooldown     = "Aguarde para reenviar o link."
	MsgBusy               = "Aguarde a operacao em andamento."
	MsgNotAuthenticated   = "Entre para continuar."
	MsgGroupNameRequired  = "Informe o nome da pelada."
	MsgGroupIDRequired    = "Informe o codigo da pelada."
	MsgEventDateRequired  = "Informe a data do evento."
	MsgNoActiveEvent      = "Nenhum evento ativo."
	MsgEventNotOpen       = "O evento nao esta aberto."
	MsgNoConfirmation     = "Voce ainda nao confirmou presenca."
	MsgAdminOnly          = "Apenas o admin pode fazer isso."
	MsgTargetRequired     = "Selecione um jogador."
	MsgInvalidStatus      = "Status invalido."
	MsgInvalidMembership  = "Tipo de membro invalido."
	MsgNoGroupSelected    = "Selecione uma pelada."
	MsgUnknownGroup       = "Voce nao participa dessa pelada."
	MsgNoRecoveryInFlight = "Nenhuma recuperacao de senha em andamento."
)
