// Package prime implements trial-division primality testing and a linear
// search for the next larger prime, mainly for sizing hash tables keyed by
// the hashkey package.
//
// Classification rules worth knowing before use:
//
//   - Every even n, including 2, is reported as Composite(2).
//   - 1 is reported as Prime (no divisor is ever found).
//   - Odd candidates are tried up to and including floor(sqrt(n)), so squares
//     of primes such as 9, 25 and 49 are Composite.
package prime
