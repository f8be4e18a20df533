// Package stages builds the five pipeline steps and the collaborator
// interfaces they delegate to.
//
// Each constructor returns a pipeline.Step that declares the fields it needs
// and calls exactly one collaborator. Stage code owns no media or network
// logic; that lives behind MediaFetcher, Transcriber, Translator, Synthesizer
// and Muxer.
package stages
