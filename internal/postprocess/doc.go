package postprocess

// Package postprocess runs ffmpeg over finished downloads. It resamples
// audio-only outputs to a requested sample rate and reports progress parsed
// from ffmpeg's -progress stream.
