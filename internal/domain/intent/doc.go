// Package intent turns raw model text into a normalized action record.
//
// The steps are deliberately small and pure: Extract finds the candidate
// object, a Repairer applies ordered syntactic rules, ParseObject is the
// strict parse and a Normalizer fills defaults and sanitizes names. The
// retry loop that drives them against a live model lives in app/usecase.
package intent
