package token

type Type int

const (
	EOF Type = iota
	Comment
	Ident
	String
	LParen
	RParen
	LBrace
	RBrace
	Colon
)

var TypeStrings = map[Type]string{
	EOF:     "end of input",
	Comment: "comment",
	Ident:   "identifier",
	String:  "string",
	LParen:  "'('",
	RParen:  "')'",
	LBrace:  "'{'",
	RBrace:  "'}'",
	Colon:   "':'",
}

func (t Type) String() string {
	if s, ok := TypeStrings[t]; ok {
		return s
	}
	return "unknown"
}

// Token is also the positional metadata carried by every ast.Node
type Token struct {
	Type      Type
	Value     string
	FileIndex int
	Line      int
	Column    int
	Len       int
}
