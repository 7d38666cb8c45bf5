package public

import handlershared "github.com/grabhealth-next/internal/http/handlers/shared"

// CaptchaPayloadRequest 验证码请求载荷。
type CaptchaPayloadRequest = handlershared.CaptchaPayloadRequest
