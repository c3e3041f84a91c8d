package tools

import "mic/model"

// intentAliases registers computational tools under the intent names the
// keyword table produces for them.
var intentAliases = map[string]string{
	"convert_unit":       UnitConverterName,
	"solve_math_problem": MathSolverName,
}

// Builtins assembles the built-in catalogue. The conversational tool only
// sees the computational tools named in whitelist; llm and store may be nil,
// in which case the tools that need them are left out.
func Builtins(llm model.LLM, store RecordStore, whitelist []string) *Registry {
	computational := NewRegistry(Computational())

	aliases := make(map[string]Tool, len(intentAliases))
	for alias, name := range intentAliases {
		if t, ok := computational.Lookup(name); ok {
			aliases[alias] = t
		}
	}
	all := computational.With(aliases)

	if store != nil {
		all = all.With(RecordTools(store))
	}
	if llm != nil {
		all = all.With(CodeTools(llm))
		all = all.With(map[string]Tool{
			ConversationalName: Conversational{LLM: llm, Tools: computational.Subset(whitelist)},
		})
	}
	return all
}
