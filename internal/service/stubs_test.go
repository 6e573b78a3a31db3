package service

import (
	"context"

	"guildhall/internal/models"
)

// Function-field stubs for the repository interfaces. Tests override only the
// fields they need; unset fields panic, which surfaces unexpected calls.

type pageRepoStub struct {
	getBySlugFn      func(context.Context, string) (*models.Page, error)
	getByIDFn        func(context.Context, uint) (*models.Page, error)
	listFn           func(context.Context, bool, int, int) ([]models.Page, error)
	createFn         func(context.Context, *models.Page) error
	updateFn         func(context.Context, *models.Page) error
	deleteFn         func(context.Context, uint) error
	createBlockFn    func(context.Context, *models.ContentBlock) error
	getBlockFn       func(context.Context, uint) (*models.ContentBlock, error)
	updateBlockFn    func(context.Context, *models.ContentBlock) error
	deleteBlockFn    func(context.Context, uint) error
	appendRevisionFn func(context.Context, *models.ContentRevision) error
	listRevisionsFn  func(context.Context, uint, int, int) ([]models.ContentRevision, error)
}

func (s *pageRepoStub) GetBySlug(ctx context.Context, slug string) (*models.Page, error) {
	return s.getBySlugFn(ctx, slug)
}
func (s *pageRepoStub) GetByID(ctx context.Context, id uint) (*models.Page, error) {
	return s.getByIDFn(ctx, id)
}
func (s *pageRepoStub) List(ctx context.Context, publishedOnly bool, limit, offset int) ([]models.Page, error) {
	return s.listFn(ctx, publishedOnly, limit, offset)
}
func (s *pageRepoStub) Create(ctx context.Context, page *models.Page) error {
	return s.createFn(ctx, page)
}
func (s *pageRepoStub) Update(ctx context.Context, page *models.Page) error {
	return s.updateFn(ctx, page)
}
func (s *pageRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *pageRepoStub) CreateBlock(ctx context.Context, block *models.ContentBlock) error {
	return s.createBlockFn(ctx, block)
}
func (s *pageRepoStub) GetBlock(ctx context.Context, id uint) (*models.ContentBlock, error) {
	return s.getBlockFn(ctx, id)
}
func (s *pageRepoStub) UpdateBlock(ctx context.Context, block *models.ContentBlock) error {
	return s.updateBlockFn(ctx, block)
}
func (s *pageRepoStub) DeleteBlock(ctx context.Context, id uint) error {
	return s.deleteBlockFn(ctx, id)
}
func (s *pageRepoStub) AppendRevision(ctx context.Context, rev *models.ContentRevision) error {
	return s.appendRevisionFn(ctx, rev)
}
func (s *pageRepoStub) ListRevisions(ctx context.Context, pageID uint, limit, offset int) ([]models.ContentRevision, error) {
	return s.listRevisionsFn(ctx, pageID, limit, offset)
}

type forumRepoStub struct {
	listCategoriesFn         func(context.Context) ([]models.Category, error)
	getCategoryFn            func(context.Context, uint) (*models.Category, error)
	createCategoryFn         func(context.Context, *models.Category) error
	updateCategoryFn         func(context.Context, *models.Category) error
	deleteCategoryFn         func(context.Context, uint) error
	countThreadsInCategoryFn func(context.Context, uint) (int64, error)
	getThreadFn              func(context.Context, uint) (*models.Thread, error)
	listThreadsFn            func(context.Context, uint, int, int, string) ([]*models.Thread, error)
	createThreadFn           func(context.Context, *models.Thread) error
	updateThreadFn           func(context.Context, *models.Thread) error
	deleteThreadFn           func(context.Context, uint) error
	replaceThreadTagsFn      func(context.Context, *models.Thread, []models.Tag) error
	getPostFn                func(context.Context, uint) (*models.Post, error)
	listPostsFn              func(context.Context, uint, int, int) ([]*models.Post, error)
	createPostFn             func(context.Context, *models.Post) error
	updatePostFn             func(context.Context, *models.Post) error
	deletePostFn             func(context.Context, uint) error
	getCommentFn             func(context.Context, uint) (*models.Comment, error)
	listCommentsFn           func(context.Context, uint, int, int) ([]*models.Comment, error)
	createCommentFn          func(context.Context, *models.Comment) error
	updateCommentFn          func(context.Context, *models.Comment) error
	deleteCommentFn          func(context.Context, uint) error
	voteFn                   func(context.Context, uint, uint, int) error
	unvoteFn                 func(context.Context, uint, uint) error
	getVoteFn                func(context.Context, uint, uint) (int, error)
}

func (s *forumRepoStub) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.listCategoriesFn(ctx)
}
func (s *forumRepoStub) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	return s.getCategoryFn(ctx, id)
}
func (s *forumRepoStub) CreateCategory(ctx context.Context, c *models.Category) error {
	return s.createCategoryFn(ctx, c)
}
func (s *forumRepoStub) UpdateCategory(ctx context.Context, c *models.Category) error {
	return s.updateCategoryFn(ctx, c)
}
func (s *forumRepoStub) DeleteCategory(ctx context.Context, id uint) error {
	return s.deleteCategoryFn(ctx, id)
}
func (s *forumRepoStub) CountThreadsInCategory(ctx context.Context, id uint) (int64, error) {
	return s.countThreadsInCategoryFn(ctx, id)
}
func (s *forumRepoStub) GetThread(ctx context.Context, id uint) (*models.Thread, error) {
	return s.getThreadFn(ctx, id)
}
func (s *forumRepoStub) ListThreads(ctx context.Context, categoryID uint, limit, offset int, sort string) ([]*models.Thread, error) {
	return s.listThreadsFn(ctx, categoryID, limit, offset, sort)
}
func (s *forumRepoStub) CreateThread(ctx context.Context, t *models.Thread) error {
	return s.createThreadFn(ctx, t)
}
func (s *forumRepoStub) UpdateThread(ctx context.Context, t *models.Thread) error {
	return s.updateThreadFn(ctx, t)
}
func (s *forumRepoStub) DeleteThread(ctx context.Context, id uint) error {
	return s.deleteThreadFn(ctx, id)
}
func (s *forumRepoStub) ReplaceThreadTags(ctx context.Context, t *models.Thread, tags []models.Tag) error {
	return s.replaceThreadTagsFn(ctx, t, tags)
}
func (s *forumRepoStub) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.getPostFn(ctx, id)
}
func (s *forumRepoStub) ListPosts(ctx context.Context, threadID uint, limit, offset int) ([]*models.Post, error) {
	return s.listPostsFn(ctx, threadID, limit, offset)
}
func (s *forumRepoStub) CreatePost(ctx context.Context, p *models.Post) error {
	return s.createPostFn(ctx, p)
}
func (s *forumRepoStub) UpdatePost(ctx context.Context, p *models.Post) error {
	return s.updatePostFn(ctx, p)
}
func (s *forumRepoStub) DeletePost(ctx context.Context, id uint) error {
	return s.deletePostFn(ctx, id)
}
func (s *forumRepoStub) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getCommentFn(ctx, id)
}
func (s *forumRepoStub) ListComments(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	return s.listCommentsFn(ctx, postID, limit, offset)
}
func (s *forumRepoStub) CreateComment(ctx context.Context, c *models.Comment) error {
	return s.createCommentFn(ctx, c)
}
func (s *forumRepoStub) UpdateComment(ctx context.Context, c *models.Comment) error {
	return s.updateCommentFn(ctx, c)
}
func (s *forumRepoStub) DeleteComment(ctx context.Context, id uint) error {
	return s.deleteCommentFn(ctx, id)
}
func (s *forumRepoStub) Vote(ctx context.Context, userID, threadID uint, value int) error {
	return s.voteFn(ctx, userID, threadID, value)
}
func (s *forumRepoStub) Unvote(ctx context.Context, userID, threadID uint) error {
	return s.unvoteFn(ctx, userID, threadID)
}
func (s *forumRepoStub) GetVote(ctx context.Context, userID, threadID uint) (int, error) {
	return s.getVoteFn(ctx, userID, threadID)
}

type tagRepoStub struct {
	listFn       func(context.Context, bool) ([]models.Tag, error)
	getByIDFn    func(context.Context, uint) (*models.Tag, error)
	getBySlugsFn func(context.Context, []string) ([]models.Tag, error)
	createFn     func(context.Context, *models.Tag) error
	updateFn     func(context.Context, *models.Tag) error
	deleteFn     func(context.Context, uint) error
}

func (s *tagRepoStub) List(ctx context.Context, includeHidden bool) ([]models.Tag, error) {
	return s.listFn(ctx, includeHidden)
}
func (s *tagRepoStub) GetByID(ctx context.Context, id uint) (*models.Tag, error) {
	return s.getByIDFn(ctx, id)
}
func (s *tagRepoStub) GetBySlugs(ctx context.Context, slugs []string) ([]models.Tag, error) {
	return s.getBySlugsFn(ctx, slugs)
}
func (s *tagRepoStub) Create(ctx context.Context, tag *models.Tag) error {
	return s.createFn(ctx, tag)
}
func (s *tagRepoStub) Update(ctx context.Context, tag *models.Tag) error {
	return s.updateFn(ctx, tag)
}
func (s *tagRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
	deleteFn        func(context.Context, uint) error
	listFn          func(context.Context, int, int) ([]models.User, error)
	countByRoleFn   func(context.Context, models.Role) (int64, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *userRepoStub) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	return s.countByRoleFn(ctx, role)
}

type newsRepoStub struct {
	getByIDFn   func(context.Context, uint) (*models.NewsArticle, error)
	getBySlugFn func(context.Context, string) (*models.NewsArticle, error)
	listFn      func(context.Context, bool, int, int) ([]models.NewsArticle, error)
	createFn    func(context.Context, *models.NewsArticle) error
	updateFn    func(context.Context, *models.NewsArticle) error
	deleteFn    func(context.Context, uint) error
}

func (s *newsRepoStub) GetByID(ctx context.Context, id uint) (*models.NewsArticle, error) {
	return s.getByIDFn(ctx, id)
}
func (s *newsRepoStub) GetBySlug(ctx context.Context, slug string) (*models.NewsArticle, error) {
	return s.getBySlugFn(ctx, slug)
}
func (s *newsRepoStub) List(ctx context.Context, publishedOnly bool, limit, offset int) ([]models.NewsArticle, error) {
	return s.listFn(ctx, publishedOnly, limit, offset)
}
func (s *newsRepoStub) Create(ctx context.Context, a *models.NewsArticle) error {
	return s.createFn(ctx, a)
}
func (s *newsRepoStub) Update(ctx context.Context, a *models.NewsArticle) error {
	return s.updateFn(ctx, a)
}
func (s *newsRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

type eventRepoStub struct {
	getByIDFn   func(context.Context, uint) (*models.Event, error)
	getBySlugFn func(context.Context, string) (*models.Event, error)
	listFn      func(context.Context, bool, int, int) ([]models.Event, error)
	createFn    func(context.Context, *models.Event) error
	updateFn    func(context.Context, *models.Event) error
	deleteFn    func(context.Context, uint) error
}

func (s *eventRepoStub) GetByID(ctx context.Context, id uint) (*models.Event, error) {
	return s.getByIDFn(ctx, id)
}
func (s *eventRepoStub) GetBySlug(ctx context.Context, slug string) (*models.Event, error) {
	return s.getBySlugFn(ctx, slug)
}
func (s *eventRepoStub) List(ctx context.Context, upcomingOnly bool, limit, offset int) ([]models.Event, error) {
	return s.listFn(ctx, upcomingOnly, limit, offset)
}
func (s *eventRepoStub) Create(ctx context.Context, e *models.Event) error {
	return s.createFn(ctx, e)
}
func (s *eventRepoStub) Update(ctx context.Context, e *models.Event) error {
	return s.updateFn(ctx, e)
}
func (s *eventRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
