package service

import "blog_backend/internal/model"

const (
	SecretContentPlaceholder = "[This post is secret. Enter the password to read it.]"
	MaskedTitle              = "[Secret post]"
)

// EvaluateAccess decides what viewer may see of post. unlocked is true only
// while serving a successful password verification. The post is not touched.
func EvaluateAccess(post *model.Post, viewer *model.Identity, unlocked bool) model.AccessDecision {
	d := model.AccessDecision{
		ViewerID: viewer.ID(),
		IsAuthor: viewer != nil && viewer.UserID == post.AuthorID,
	}

	switch {
	case !post.IsSecret:
		d.State = model.StatePublic
	case d.IsAuthor:
		d.State = model.StateSecretAsAuthor
	case unlocked:
		d.State = model.StateSecretUnlocked
	default:
		d.State = model.StateSecretLocked
	}
	d.HasAccess = d.State != model.StateSecretLocked
	return d
}

// PresentPost shapes post for one response. Only locked posts are altered:
// the content is always replaced and the title is masked in list views.
func PresentPost(post *model.Post, d model.AccessDecision, view model.PostView) model.PostResponse {
	resp := model.PostResponse{
		ID:             post.ID,
		Title:          post.Title,
		Content:        post.Content,
		AuthorID:       post.AuthorID,
		AuthorUsername: post.AuthorUsername,
		IsSecret:       post.IsSecret,
		HasAccess:      d.HasAccess,
		Version:        post.Version,
		CreatedAt:      post.CreatedAt,
		UpdatedAt:      post.UpdatedAt,
	}

	if d.State == model.StateSecretLocked {
		resp.Content = SecretContentPlaceholder
		if view == model.ViewList {
			resp.Title = MaskedTitle
		}
	}
	return resp
}

func presentAll(posts []model.Post, viewer *model.Identity, view model.PostView) []model.PostResponse {
	out := make([]model.PostResponse, 0, len(posts))
	for i := range posts {
		p := &posts[i]
		out = append(out, PresentPost(p, EvaluateAccess(p, viewer, false), view))
	}
	return out
}
