// Package session runs one practical-mode recognition session.
//
// A Session moves loading -> detecting once its model is warm and a camera
// stream is acquired, and ends in error (model or camera failure, camera
// unplugged) or closed. While detecting, a sampler feeds frames to the
// recognizer, a stability filter confirms the subject, and a debouncer
// fetches the subject's feature card once the camera settles. Feature and
// quiz panels are independent overlays on top of the detecting stage.
//
// All session state is owned by the Session and guarded by its mutex.
// Resources are released exactly once on every exit path.
package session
