package devpod

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/itme/solidacl/internal/pod"
	"github.com/itme/solidacl/internal/store"
)

const aclSuffix = ".acl"

// ACLPathOf maps a resource path to its ACL document path. Containers keep
// the trailing slash: "/c/" -> "/c/.acl", "/c/r" -> "/c/r.acl".
func ACLPathOf(resourcePath string) string {
	return resourcePath + aclSuffix
}

func resourcePathOf(aclPath string) string {
	return strings.TrimSuffix(aclPath, aclSuffix)
}

func isACLPath(path string) bool {
	return strings.HasSuffix(path, aclSuffix)
}

func (s *Server) handle(ctx *gin.Context) {
	path := ctx.Param("path")
	if isACLPath(path) {
		s.handleACL(ctx, path)
		return
	}
	s.handleResource(ctx, path)
}

// handleResource serves resource metadata. The ACL location is advertised
// through a Link rel="acl" header whether or not the document exists yet;
// resources flagged acl-invisible omit the link to simulate a principal
// without Control access.
func (s *Server) handleResource(ctx *gin.Context, path string) {
	if ctx.Request.Method != http.MethodHead && ctx.Request.Method != http.MethodGet {
		ctx.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
		return
	}

	res, err := s.store.GetResource(ctx.Request.Context(), path)
	if errors.Is(err, store.ErrResourceNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "no such resource"})
		return
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if res.Forbidden {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	if res.ACLVisible {
		ctx.Header("Link", fmt.Sprintf("<%s>; rel=%q", ACLPathOf(path), "acl"))
	}
	if ctx.Request.Method == http.MethodHead {
		ctx.Status(http.StatusOK)
		return
	}
	ctx.PureJSON(http.StatusOK, gin.H{
		"path":      res.Path,
		"container": res.IsContainer,
	})
}

func (s *Server) handleACL(ctx *gin.Context, aclPath string) {
	reqCtx := ctx.Request.Context()

	// Writes on a forbidden resource fail with 403, like reads do.
	res, err := s.store.GetResource(reqCtx, resourcePathOf(aclPath))
	if err != nil && !errors.Is(err, store.ErrResourceNotFound) {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if res != nil && res.Forbidden {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	switch ctx.Request.Method {
	case http.MethodHead, http.MethodGet:
		triples, err := s.store.DocumentTriples(reqCtx, aclPath)
		if errors.Is(err, store.ErrDocumentNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "no such document"})
			return
		}
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		ctx.PureJSON(http.StatusOK, &pod.DatasetBody{Triples: pod.ToRecords(triples)})

	case http.MethodPut:
		var body pod.DatasetBody
		if err := ctx.ShouldBindJSON(&body); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		triples, err := pod.FromRecords(body.Triples)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := s.store.PutDocument(reqCtx, aclPath, triples); err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		ctx.Status(http.StatusCreated)

	case http.MethodPatch:
		var body pod.PatchBody
		if err := ctx.ShouldBindJSON(&body); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		additions, err := pod.FromRecords(body.Additions)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		deletions, err := pod.FromRecords(body.Deletions)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		err = s.store.PatchDocument(reqCtx, aclPath, additions, deletions)
		if errors.Is(err, store.ErrDocumentNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "no such document"})
			return
		}
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		ctx.Status(http.StatusOK)

	case http.MethodDelete:
		err := s.store.DeleteDocument(reqCtx, aclPath)
		if errors.Is(err, store.ErrDocumentNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "no such document"})
			return
		}
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		ctx.Status(http.StatusNoContent)

	default:
		ctx.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	}
}
