package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

func smells(m dsl.Matcher) {
	// Consecutive guard ifs returning the same value are mergeable with ||.
	m.Match(`if $c1 { return $ret }; if $c2 { return $ret }`).
		Report(`two consecutive guards return the same value; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { return $ret }`)

	m.Match(`if $c1 { continue }; if $c2 { continue }`).
		Report(`two consecutive continues; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { continue }`)

	// The response envelope is the only sanctioned error surface for tool
	// results: panics in handler paths defeat the errors-are-data contract.
	m.Match(`panic($x)`).
		Where(m.File().PkgPath.Matches(`internal/domain`)).
		Report(`avoid panic in domain code; classify the failure into the outcome envelope instead`)
}
