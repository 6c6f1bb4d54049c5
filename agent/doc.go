// Package agent contains the specialist tutors a routed question is handed
// to.
//
// Every specialist is the same concrete type (Specialist) configured by a
// Descriptor: a persona prompt, a reply budget and display metadata. The six
// built-in descriptors cover math, science, language, study methods, answer
// assessment and emotional companionship, all aimed at children aged 5 to 12.
//
// Design principles:
//   - No per-call mutable state; one Specialist may serve many sessions
//   - Backend failures never escape Process; the student gets ApologyMessage
//   - Persona text is a template so budgets and level hints stay in one place
package agent
