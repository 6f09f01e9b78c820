// Package classify adapts HTTP inference servers to the recognition ports.
//
// The fine classifier answers POST /classify with MobileNet-style
// {className, probability} pairs; the coarse detector answers POST /detect
// with COCO-SSD-style {class, score, bbox} objects. Both accept the raw JPEG
// frame as the request body and expose GET /health for warm-up.
package classify
