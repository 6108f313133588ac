// Package schema loads annotated schema documents into the tagged Node tree the
// resolver walks. Objects are decoded with their key order intact so property
// discovery follows the order authors wrote. UX annotations are extracted once
// per node at parse time and stored on Node.UX.
package schema
