package handlers

// Response messages. Clients match on these strings, so they are fixed.
const (
	msgInvalidInput = "입력값이 유효하지 않습니다."

	msgSendOK     = "전송 성공"
	msgSendFailed = "전송 실패"

	msgSignupOK          = "회원 가입에 성공하였습니다."
	msgSignupFailed      = "사용자 계정 생성에 실패하였습니다."
	msgCodeMismatch      = "인증번호가 일치하지 않습니다."
	msgDuplicateEmail    = "중복된 email입니다."
	msgPasswordFormat    = "비밀번호 형식이 올바르지 않습니다."
	msgPasswordMismatch  = "비밀번호가 일치하지 않습니다."
	msgCheckCredentials  = "email 또는 비밀번호를 확인해주세요."
	msgLoginOK           = "log-in 되었습니다."
	msgLoginFailed       = "log-in에 실패하였습니다."
	msgLogoutOK          = "log-out 되었습니다."
	msgLogoutFailed      = "log-out에 실패하였습니다."
	msgRefreshOK         = "로그인이 연장되었습니다."
	msgRefreshFailed     = "로그인 연장에 실패하였습니다."
	msgUserFetchOK       = "사용자 정보 조회에 성공하였습니다."
	msgUserFetchFailed   = "사용자 정보 조회에 실패하였습니다."
	msgUserUpdateOK      = "사용자 정보 수정에 성공하였습니다."
	msgUserUpdateFailed  = "사용자 정보 수정에 실패하였습니다."
	msgNewPasswordDiffer = "변경된 비밀번호가 일치하지 않습니다."
	msgNewPasswordFormat = "변경된 비밀번호 형식이 올바르지 않습니다."
	msgUserDeleteOK      = "사용자 정보 삭제에 성공하였습니다."
	msgUserDeleteFailed  = "사용자 정보 삭제에 실패하였습니다."
	msgUserNotFound      = "사용자를 찾을 수 없습니다."
	msgForbidden         = "권한이 없습니다."
	msgLoginRequired     = "로그인이 필요합니다."
)
