package errcode

type ErrCode int64

const (
	SUCCESS            ErrCode = 0
	SERVICE_CEILING    ErrCode = 41002
	ILLEGAL_DATAFORMAT ErrCode = 41003
	INVALID_METHOD     ErrCode = 42001
	INVALID_PARAMS     ErrCode = 42002
	INVALID_BLOCK      ErrCode = 43003
	INVALID_PROOF      ErrCode = 43006
	UNKNOWN_BLOCK      ErrCode = 44003
	STALE_WORK         ErrCode = 44005
	INTERNAL_ERROR     ErrCode = 45001
)

var ErrMessage = map[ErrCode]string{
	SUCCESS:            "SUCCESS",
	SERVICE_CEILING:    "SERVICE CEILING",
	ILLEGAL_DATAFORMAT: "ILLEGAL DATAFORMAT",
	INVALID_METHOD:     "INVALID METHOD",
	INVALID_PARAMS:     "INVALID PARAMS",
	INVALID_BLOCK:      "INVALID BLOCK",
	INVALID_PROOF:      "INVALID PROOF",
	UNKNOWN_BLOCK:      "UNKNOWN BLOCK",
	STALE_WORK:         "STALE WORK",
	INTERNAL_ERROR:     "INTERNAL ERROR",
}

func (code ErrCode) Error() string {
	if msg, ok := ErrMessage[code]; ok {
		return msg
	}
	return "UNKNOWN ERROR"
}
