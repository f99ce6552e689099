package cmd

import (
	"mime"
	"net/http"
	"reflect"

	"github.com/Malowking/bigo/core/errors"
	"github.com/gogf/gf/v2/errors/gcode"
	"github.com/gogf/gf/v2/errors/gerror"
	"github.com/gogf/gf/v2/frame/g"
	"github.com/gogf/gf/v2/net/ghttp"
	"github.com/gogf/gf/v2/util/gmeta"
)

const (
	contentTypeEventStream  = "text/event-stream"
	contentTypeOctetStream  = "application/octet-stream"
	contentTypeMixedReplace = "multipart/x-mixed-replace"
)

var (
	// streamContentType is the content types for stream response.
	streamContentType = []string{contentTypeEventStream, contentTypeOctetStream, contentTypeMixedReplace}
)

// ErrorEnvelope 不包装接口的错误响应，与问答接口的 {botResponse, error} 结构一致
type ErrorEnvelope struct {
	BotResponse []map[string]any `json:"botResponse"`
	Error       string           `json:"error"`
	Code        int              `json:"code"`
	Payload     map[string]any   `json:"payload,omitempty"`
}

// MiddlewareHandlerResponse is the default middleware handling handler response object and its error.
func MiddlewareHandlerResponse(r *ghttp.Request) {
	r.Middleware.Next()

	// There's custom buffer content, it then exits current handler.
	if r.Response.BufferLength() > 0 || r.Response.Writer.BytesWritten() > 0 {
		return
	}

	// It does not output common response content if it is stream response.
	mediaType, _, _ := mime.ParseMediaType(r.Response.Header().Get("Content-Type"))
	for _, ct := range streamContentType {
		if mediaType == ct {
			return
		}
	}

	var (
		msg  string
		err  = r.GetError()
		res  = r.GetHandlerResponse()
		code = gerror.Code(err)
	)

	if noWrapResp(r) {
		if err != nil {
			writeErrorEnvelope(r, err)
			return
		}
		r.Response.WriteJson(res)
		return
	}

	if err != nil {
		if code == gcode.CodeNil {
			code = gcode.CodeInternalError
		}
		msg = err.Error()
		r.Response.WriteHeader(statusOf(err))
	} else {
		if r.Response.Status > 0 && r.Response.Status != http.StatusOK {
			switch r.Response.Status {
			case http.StatusNotFound:
				code = gcode.CodeNotFound
			case http.StatusForbidden:
				code = gcode.CodeNotAuthorized
			default:
				code = gcode.CodeUnknown
			}
			// It creates an error as it can be retrieved by other middlewares.
			err = gerror.NewCode(code, msg)
			r.SetError(err)
		} else {
			code = gcode.CodeOK
		}
		msg = code.Message()
	}
	r.Response.WriteJson(ghttp.DefaultHandlerResponse{
		Code:    code.Code(),
		Message: msg,
		Data:    res,
	})
}

// writeErrorEnvelope 业务错误按错误码决定状态码，参数校验失败为 400
func writeErrorEnvelope(r *ghttp.Request, err error) {
	env := ErrorEnvelope{BotResponse: []map[string]any{}}
	if appErr := errors.GetAppError(err); appErr != nil {
		env.Error = appErr.Summary()
		env.Code = int(appErr.Code)
		env.Payload = appErr.Payload
	} else {
		env.Error = err.Error()
		env.Code = gerror.Code(err).Code()
	}

	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		g.Log().Errorf(r.Context(), "%s %s failed: %s", r.Method, r.URL.Path, env.Error)
	}
	r.Response.ClearBuffer()
	r.Response.WriteHeader(status)
	r.Response.WriteJson(env)
}

func statusOf(err error) int {
	if appErr := errors.GetAppError(err); appErr != nil {
		return appErr.StatusCode()
	}
	switch gerror.Code(err) {
	case gcode.CodeValidationFailed, gcode.CodeInvalidParameter, gcode.CodeMissingParameter:
		return http.StatusBadRequest
	case gcode.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// 中间件中判断
func noWrapResp(r *ghttp.Request) bool {
	handler := r.GetServeHandler()
	if handler == nil {
		return false
	}
	if handler.Handler.Info.Type != nil && handler.Handler.Info.Type.NumIn() == 2 {
		var objectReq = reflect.New(handler.Handler.Info.Type.In(1))
		if v := gmeta.Get(objectReq, "no_wrap_resp"); !v.IsEmpty() {
			return v.Bool()
		}
	}
	return false
}
