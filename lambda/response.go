package lambda

// Response type tags.
const (
	TypeKeepAlive = "keep_alive"
	TypeResult    = "result"
	TypeError     = "error"
)

// Response is one of KeepAlive, Result or Error.
type Response interface {
	ResponseType() string
}

// KeepAlive acknowledges a warm-up request.
type KeepAlive struct {
	Type string `json:"type" yaml:"type" msgpack:"type" bson:"type"`
}

// Result carries a compiled firmware image.
type Result struct {
	Type     string   `json:"type" yaml:"type" msgpack:"type" bson:"type"`
	Result   string   `json:"result" yaml:"result" msgpack:"result" bson:"result"` // base64 firmware
	Log      string   `json:"log" yaml:"log" msgpack:"log" bson:"log"`
	Revision string   `json:"revision" yaml:"revision" msgpack:"revision" bson:"revision"`
}

// Error reports a failed request. Detail may be null.
type Error struct {
	Type     string   `json:"type" yaml:"type" msgpack:"type" bson:"type"`
	Status   int      `json:"status" yaml:"status" msgpack:"status" bson:"status"`
	Message  string   `json:"message" yaml:"message" msgpack:"message" bson:"message"`
	Detail   []string `json:"detail" yaml:"detail" msgpack:"detail" bson:"detail"`
	Revision string   `json:"revision" yaml:"revision" msgpack:"revision" bson:"revision"`
}

func (KeepAlive) ResponseType() string { return TypeKeepAlive }
func (Result) ResponseType() string    { return TypeResult }
func (Error) ResponseType() string     { return TypeError }
