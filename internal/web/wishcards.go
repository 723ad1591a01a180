package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/donatewisely/donatewisely/internal/errorz"
	"github.com/donatewisely/donatewisely/internal/storage"
	"github.com/donatewisely/donatewisely/internal/wishcard"
	"github.com/google/uuid"
)

const invalidImageMsg = "Error: File must be in jpeg, jpg, gif, or png format. The file must also be less than 5 megabytes."

type wishCardsData struct {
	Cards []wishcard.WishCard
	Query string
}

type wishCardSearch struct {
	WishItem string `schema:"wishitem"`
}

// messageJSON is a message as sent to clients.
type messageJSON struct {
	ID            uuid.UUID `json:"id"`
	WishCardID    uuid.UUID `json:"wishCard"`
	FromFirstName string    `json:"fromFirstName"`
	Message       string    `json:"message"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (s *Server) wishCardRoutes() {
	{
		h := mapResponse(s, s.deps.WishCardService.List)
		h.response(func(r result[struct{}, []wishcard.WishCard]) error {
			return r.s.writeView(r.w, r.r, page{name: "wishcards", data: wishCardsData{Cards: r.out}})
		})

		s.handle("GET /wishcards", h)
	}

	{
		h := mapBoth(s, s.deps.WishCardService.Create)
		h.request(func(r *http.Request) (wishcard.NewWishCard, error) {
			in, err := decodeForm[wishcard.NewWishCard](s, r)
			if err != nil {
				return in, err
			}

			in.CreatedBy = s.sessionUser(r).ID
			in.Image, err = uploadedImage(r, "wishCardImage")
			return in, err
		})
		h.onError(func(err error) error {
			if errors.Is(err, storage.ErrInvalidImage) {
				return newPublicError(http.StatusBadRequest, invalidImageMsg, err)
			}
			return err
		})
		h.response(func(r result[wishcard.NewWishCard, wishcard.WishCard]) error {
			r.s.deps.Sessions.AddFlash(r.r.Context(), fmt.Sprintf("The wish card for %s was created.", r.out.ChildFirstName))
			http.Redirect(r.w, r.r, "/wishcards", http.StatusFound)
			return nil
		})

		s.handle("POST /wishcards", h, s.partnerOnly, s.validated(wishCardSchema))
	}

	{
		h := mapBoth(s, func(ctx context.Context, in wishCardSearch) ([]wishcard.WishCard, error) {
			return s.deps.WishCardService.Search(ctx, in.WishItem)
		})
		h.response(func(r result[wishCardSearch, []wishcard.WishCard]) error {
			return r.s.writeView(r.w, r.r, page{
				name: "wishcards",
				data: wishCardsData{Cards: r.out, Query: r.in.WishItem},
			})
		})

		s.handle("POST /wishcards/search", h, s.validated(searchSchema))
	}

	{
		h := mapResponse(s, s.deps.WishCardService.Random)
		h.response(func(r result[struct{}, []wishcard.WishCard]) error {
			return r.s.writeView(r.w, r.r, page{name: "random-wishcards", partial: true, data: r.out})
		})

		s.handle("GET /wishcards/get/random", h)
	}

	s.handle("GET /wishcards/defaults/{id}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Anything that is not a known age group gets the teen images.
		group, _ := strconv.Atoi(r.PathValue("id"))

		err := s.writeView(w, r, page{
			name:    "default-images",
			partial: true,
			data:    wishcard.DefaultImages(wishcard.AgeGroup(group)),
		})
		if err != nil {
			s.handleError(w, r, err)
		}
	}))

	s.handle("GET /wishcards/{id}", http.HandlerFunc(s.wishCardDetails), s.loggedIn)

	{
		h := mapBoth(s, s.deps.WishCardService.PostMessage)
		h.request(func(r *http.Request) (wishcard.NewMessage, error) {
			in, err := decodeForm[wishcard.NewMessage](s, r)
			u := s.sessionUser(r)
			in.From = u.ID
			in.FromFirstName = u.FirstName
			return in, err
		})
		h.onError(func(err error) error {
			if errors.Is(err, wishcard.ErrUnknownCard) {
				return newPublicError(http.StatusBadRequest, "Wish card not found", err)
			}
			return err
		})
		h.response(func(r result[wishcard.NewMessage, wishcard.Message]) error {
			return writeJSON(r.w, http.StatusOK, envelope{
				Success: true,
				Data: messageJSON{
					ID:            r.out.ID,
					WishCardID:    r.out.WishCardID,
					FromFirstName: r.out.FromFirstName,
					Message:       r.out.Text,
					CreatedAt:     r.out.CreatedAt,
				},
			})
		})

		s.handle("POST /wishcards/message", h, s.validated(messageSchema), s.loggedInAPI)
	}
}

func (s *Server) wishCardDetails(w http.ResponseWriter, r *http.Request) {
	notFound := notFoundAs(http.StatusNotFound, "Wish card not found")

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.handleError(w, r, notFound(fmt.Errorf("%w: %w", errorz.ErrNotFound, err)))
		return
	}

	details, err := s.deps.WishCardService.Details(r.Context(), id, s.sessionUser(r).FirstName)
	if err != nil {
		s.handleError(w, r, notFound(err))
		return
	}

	err = s.writeView(w, r, page{name: "wishcard-detail", data: details})
	if err != nil {
		s.handleError(w, r, err)
	}
}

// uploadedImage reads the image uploaded in the multipart field. Missing
// and oversized files are returned without a body, the image check
// rejects them.
func uploadedImage(r *http.Request, field string) (storage.File, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return storage.File{}, nil
	}

	fh := r.MultipartForm.File[field][0]
	f := storage.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
	}

	if fh.Size > storage.MaxImageSize {
		return f, nil
	}

	src, err := fh.Open()
	if err != nil {
		return storage.File{}, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return storage.File{}, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	f.Body = bytes.NewReader(data)
	return f, nil
}
