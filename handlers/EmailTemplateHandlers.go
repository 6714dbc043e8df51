package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"chip-quotation-backend/models"
	"chip-quotation-backend/storage"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/html"
)

// Workflow email template types the quote status handler sends.
var validTemplateTypes = []string{"quote_submitted", "quote_approved", "quote_rejected"}

func isValidTemplateType(t string) bool {
	for _, v := range validTemplateTypes {
		if t == v {
			return true
		}
	}
	return false
}

// sanitizeHTML strips disallowed tags and attributes from template
// bodies coming out of the frontend rich-text editor.
func sanitizeHTML(input string) string {
	doc, err := html.Parse(strings.NewReader(input))
	if err != nil {
		return input
	}

	allowedTags := map[string]bool{
		"p": true, "br": true, "strong": true, "b": true, "em": true, "i": true,
		"u": true, "h1": true, "h2": true, "h3": true, "h4": true,
		"ul": true, "ol": true, "li": true, "div": true, "span": true, "a": true,
		"table": true, "thead": true, "tbody": true, "tr": true, "th": true, "td": true,
		"blockquote": true, "code": true, "pre": true, "hr": true,
	}
	allowedAttributes := map[string]map[string]bool{
		"a":     {"href": true, "target": true, "title": true},
		"table": {"border": true, "cellpadding": true, "cellspacing": true, "width": true},
		"td":    {"colspan": true, "rowspan": true},
		"th":    {"colspan": true, "rowspan": true},
	}

	var newDoc html.Node
	newDoc.Type = html.DocumentNode

	var processNode func(*html.Node, *html.Node)
	processNode = func(src *html.Node, dst *html.Node) {
		for child := src.FirstChild; child != nil; child = child.NextSibling {
			switch child.Type {
			case html.TextNode:
				dst.AppendChild(&html.Node{Type: html.TextNode, Data: child.Data})
			case html.ElementNode:
				if allowedTags[child.Data] {
					newElement := &html.Node{Type: html.ElementNode, Data: child.Data}
					for _, attr := range child.Attr {
						if allowedAttributes[child.Data] != nil && allowedAttributes[child.Data][attr.Key] {
							newElement.Attr = append(newElement.Attr, attr)
						}
					}
					dst.AppendChild(newElement)
					processNode(child, newElement)
				} else {
					processNode(child, dst)
				}
			}
		}
	}
	processNode(doc, &newDoc)

	var buf strings.Builder
	if err := html.Render(&buf, &newDoc); err != nil {
		return input
	}
	result := buf.String()

	// html.Render wraps the fragment in <html><head></head><body>.
	if strings.HasPrefix(result, "<html>") {
		start := strings.Index(result, "<body>")
		end := strings.Index(result, "</body>")
		if start != -1 && end != -1 {
			result = result[start+6 : end]
		}
	}
	return strings.TrimSpace(result)
}

// CreateEmailTemplate godoc
// @Summary      Create email template
// @Description  Create a workflow email template override. Setting is_default switches the active override for the type.
// @Tags         email-templates
// @Accept       json
// @Produce      json
// @Param        body  body      models.EmailTemplateRequest  true  "Template"
// @Success      201   {object}  models.EmailTemplate
// @Failure      400   {object}  models.ErrorResponse
// @Router       /api/email-templates [post]
func CreateEmailTemplate(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		var req models.EmailTemplateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !isValidTemplateType(req.TemplateType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template type", "valid_types": validTemplateTypes})
			return
		}

		tx, err := db.Begin()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
			return
		}
		defer tx.Rollback()

		if req.IsDefault {
			if _, err := tx.Exec("UPDATE email_template SET is_default = false WHERE template_type = $1", req.TemplateType); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update existing defaults"})
				return
			}
		}

		tpl := models.EmailTemplate{
			Name:         req.Name,
			Subject:      req.Subject,
			Body:         sanitizeHTML(req.Body),
			TemplateType: req.TemplateType,
			IsDefault:    req.IsDefault,
			CreatedBy:    user.ID,
		}
		err = tx.QueryRow(`INSERT INTO email_template (name, subject, body, template_type, is_default, created_by, created_at, updated_at)
		        VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW()) RETURNING id`,
			tpl.Name, tpl.Subject, tpl.Body, tpl.TemplateType, tpl.IsDefault, tpl.CreatedBy,
		).Scan(&tpl.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
			return
		}

		_ = storage.LogChange(db, user.ID, "email_template", strconv.Itoa(tpl.ID), "create", "", tpl.Name)

		c.JSON(http.StatusCreated, tpl)
	}
}

// GetEmailTemplates godoc
// @Summary      List email templates
// @Tags         email-templates
// @Produce      json
// @Param        type  query  string  false  "Template type filter"
// @Success      200  {array}  models.EmailTemplate
// @Router       /api/email-templates [get]
func GetEmailTemplates(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := `SELECT id, name, subject, body, template_type, is_default, created_by, created_at, updated_at
		          FROM email_template`
		var args []interface{}
		if t := c.Query("type"); t != "" {
			query += " WHERE template_type = $1"
			args = append(args, t)
		}
		query += " ORDER BY template_type, id"

		rows, err := db.Query(query, args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer rows.Close()

		var templates []models.EmailTemplate
		for rows.Next() {
			var tpl models.EmailTemplate
			if err := rows.Scan(&tpl.ID, &tpl.Name, &tpl.Subject, &tpl.Body, &tpl.TemplateType,
				&tpl.IsDefault, &tpl.CreatedBy, &tpl.CreatedAt, &tpl.UpdatedAt); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			templates = append(templates, tpl)
		}

		c.JSON(http.StatusOK, templates)
	}
}

// UpdateEmailTemplate godoc
// @Summary      Update email template
// @Tags         email-templates
// @Accept       json
// @Produce      json
// @Param        id    path      int                          true  "Template ID"
// @Param        body  body      models.EmailTemplateRequest  true  "Template"
// @Success      200   {object}  models.SuccessResponse
// @Failure      404   {object}  models.ErrorResponse
// @Router       /api/email-templates/{id} [put]
func UpdateEmailTemplate(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template ID"})
			return
		}

		var req models.EmailTemplateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !isValidTemplateType(req.TemplateType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template type", "valid_types": validTemplateTypes})
			return
		}

		tx, err := db.Begin()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
			return
		}
		defer tx.Rollback()

		if req.IsDefault {
			if _, err := tx.Exec("UPDATE email_template SET is_default = false WHERE template_type = $1 AND id != $2",
				req.TemplateType, id); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update existing defaults"})
				return
			}
		}

		result, err := tx.Exec(`UPDATE email_template SET name = $1, subject = $2, body = $3,
		        template_type = $4, is_default = $5, updated_at = NOW() WHERE id = $6`,
			req.Name, req.Subject, sanitizeHTML(req.Body), req.TemplateType, req.IsDefault, id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		rowsAffected, _ := result.RowsAffected()
		if rowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
			return
		}
		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
			return
		}

		_ = storage.LogChange(db, user.ID, "email_template", strconv.Itoa(id), "update", "", req.Name)

		c.JSON(http.StatusOK, gin.H{"message": "Template updated successfully"})
	}
}

// DeleteEmailTemplate godoc
// @Summary      Delete email template
// @Description  Remove a template override; the built-in default for its type takes over.
// @Tags         email-templates
// @Produce      json
// @Param        id   path      int  true  "Template ID"
// @Success      200  {object}  models.SuccessResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/email-templates/{id} [delete]
func DeleteEmailTemplate(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template ID"})
			return
		}

		result, err := db.Exec("DELETE FROM email_template WHERE id = $1", id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		rowsAffected, _ := result.RowsAffected()
		if rowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
			return
		}

		_ = storage.LogChange(db, user.ID, "email_template", strconv.Itoa(id), "delete", "", "")

		c.JSON(http.StatusOK, gin.H{"message": "Template deleted successfully"})
	}
}
