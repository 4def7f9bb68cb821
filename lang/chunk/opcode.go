package chunk

// Opcode is a single bytecode instruction. Operand layout and stack effect
// for each opcode are documented in the table below and in spec.md §4.1;
// all multi-byte operands are big-endian.
type Opcode uint8

//nolint:revive
const (
	CONSTANT Opcode = iota //   u8 idx                       +1
	NIL                    //   -                            +1
	TRUE                   //   -                            +1
	FALSE                  //   -                            +1
	POP                    //   -                            -1
	GET_LOCAL              //   u8 slot                       +1
	SET_LOCAL              //   u8 slot                        0
	GET_GLOBAL             //   u8 name_idx                  +1
	DEFINE_GLOBAL          //   u8 name_idx                  -1
	SET_GLOBAL             //   u8 name_idx                    0
	GET_UPVALUE            //   u8 idx                       +1
	SET_UPVALUE            //   u8 idx                         0
	GET_PROPERTY           //   u8 name_idx                    0
	SET_PROPERTY           //   u8 name_idx                  -1
	GET_SUPER              //   u8 name_idx                    0
	EQUAL                  //   -                            -1
	LESS                   //   -                            -1
	GREATER                //   -                            -1
	ADD                    //   -                            -1
	SUBTRACT               //   -                            -1
	MULTIPLY               //   -                            -1
	DIVIDE                 //   -                            -1
	NOT                    //   -                              0
	NEGATE                 //   -                              0
	PRINT                  //   -                            -1
	JUMP                   //   u16                            0
	JUMP_IF_FALSE          //   u16                            0
	LOOP                   //   u16                            0
	CALL                   //   u8 argc                    varies
	INVOKE                 //   u8 name_idx, u8 argc        varies
	SUPER_INVOKE           //   u8 name_idx, u8 argc        varies
	CLOSURE                //   u8 fn_idx, upvals...         +1
	CLOSE_UPVALUE          //   -                            -1
	RETURN                 //   -                        pops frame
	CLASS                  //   u8 name_idx                  +1
	INHERIT                //   -                            -1
	METHOD                 //   u8 name_idx                  -1

	numOpcodes
)

var opcodeNames = [...]string{
	CONSTANT:      "constant",
	NIL:           "nil",
	TRUE:          "true",
	FALSE:         "false",
	POP:           "pop",
	GET_LOCAL:     "get_local",
	SET_LOCAL:     "set_local",
	GET_GLOBAL:    "get_global",
	DEFINE_GLOBAL: "define_global",
	SET_GLOBAL:    "set_global",
	GET_UPVALUE:   "get_upvalue",
	SET_UPVALUE:   "set_upvalue",
	GET_PROPERTY:  "get_property",
	SET_PROPERTY:  "set_property",
	GET_SUPER:     "get_super",
	EQUAL:         "equal",
	LESS:          "less",
	GREATER:       "greater",
	ADD:           "add",
	SUBTRACT:      "subtract",
	MULTIPLY:      "multiply",
	DIVIDE:        "divide",
	NOT:           "not",
	NEGATE:        "negate",
	PRINT:         "print",
	JUMP:          "jump",
	JUMP_IF_FALSE: "jump_if_false",
	LOOP:          "loop",
	CALL:          "call",
	INVOKE:        "invoke",
	SUPER_INVOKE:  "super_invoke",
	CLOSURE:       "closure",
	CLOSE_UPVALUE: "close_upvalue",
	RETURN:        "return",
	CLASS:         "class",
	INHERIT:       "inherit",
	METHOD:        "method",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return "illegal opcode"
}

// Valid reports whether op is a recognized opcode.
func (op Opcode) Valid() bool { return op < numOpcodes }
