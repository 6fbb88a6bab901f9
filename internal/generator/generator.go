// Package generator holds what the answer generators share.
package generator

// NoContextAnswer is returned when a question arrives without any retrieved passage.
const NoContextAnswer = "I couldn't find any relevant information in the uploaded documents."

// FailedAnswer replaces the answer text when generation fails.
const FailedAnswer = "Error: Unable to generate answer."
