package compiler

import "testing"

// simpleSource is a minimal program used for benchmarking the fast path.
const simpleSource = `
begin
	x := 3;
	y := 4;
	write(x * y)
end
`

// complexSource is a larger program exercising nested loops, conditionals
// and multi-value for loops.
const complexSource = `
begin
	/* primes below 50 */
	n := 2;
	while n < 50 do
		d := 2;
		prime := 1;
		while d * d <= n do
			if (n / d) * d = n then prime := 0 fi;
			d := d + 1
		od;
		if prime = 1 then write(n) fi;
		n := n + 1
	od;

	for k := 1, 2, 3, 5, 8, 13 do
		for m := k, -k do
			if m < 0 then write(m * m) else write(m) fi
		od
	od;

	total := 0;
	i := 0;
	while i < 100 do
		total := total + (i * 3 - 1) / 2;
		i := i + 1
	od;
	write(total)
end
`

// --- Lex benchmarks ---

func BenchmarkLex_Simple(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Lex(simpleSource)
	}
}

func BenchmarkLex_Complex(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Lex(complexSource)
	}
}

// --- Translate benchmarks ---
// Tokens are pre-computed outside the timed region.

func BenchmarkTranslate_Simple(b *testing.B) {
	tokens := Lex(simpleSource)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Translate(NewSliceSource(tokens...), NewCodeGen(nil)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTranslate_Complex(b *testing.B) {
	tokens := Lex(complexSource)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Translate(NewSliceSource(tokens...), NewCodeGen(nil)); err != nil {
			b.Fatal(err)
		}
	}
}

// --- Full pipeline ---

func BenchmarkCompile_Complex(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Compile(complexSource); err != nil {
			b.Fatal(err)
		}
	}
}
